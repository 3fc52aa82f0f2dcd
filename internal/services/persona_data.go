package services

import (
	"time"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

// DefaultPersonaID is the built-in persona. It cannot be deleted.
const DefaultPersonaID = "luna"

var basicEmotions = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust", "trust", "anticipation"}

var allEmotions = append(append([]string(nil), basicEmotions...),
	"love", "guilt", "envy", "curiosity", "pride", "shame", "contempt", "awe")

var negativeEmotions = []string{"sadness", "fear", "anger", "disgust"}

// emotionKeywords drive the impact analysis. Korean keywords match as
// substrings, English ones as whole words.
var emotionKeywords = map[string][]string{
	"joy": {"행복", "기쁨", "좋아", "즐거움", "신나", "행운", "웃음", "미소", "환희", "만족",
		"happy", "glad", "joy", "fun", "excited", "smile", "laugh", "delighted", "wonderful", "great"},
	"sadness": {"슬픔", "우울", "실망", "상처", "아픔", "눈물", "그리움", "외로움", "절망", "비통",
		"sad", "depressed", "disappointed", "hurt", "cry", "tears", "lonely", "miss", "hopeless", "grief"},
	"anger": {"화남", "분노", "짜증", "격분", "격노", "불만", "억울", "증오", "적대", "혐오",
		"angry", "mad", "furious", "annoyed", "irritated", "hate", "unfair", "rage", "frustrated", "hostile"},
	"fear": {"두려움", "공포", "불안", "걱정", "겁", "무서움", "긴장", "조심", "경계", "위험",
		"afraid", "scared", "fear", "anxious", "worried", "nervous", "terrified", "danger", "panic", "careful"},
	"surprise": {"놀람", "충격", "경악", "예상치 못한", "갑작스러운", "깜짝", "예기치 않은", "의외", "기대 이상", "예상 밖",
		"surprised", "shocked", "unexpected", "sudden", "wow", "amazing", "astonished", "unbelievable"},
	"disgust": {"역겨움", "구역질", "메스꺼움", "불쾌", "혐오", "싫음", "거부감", "불결", "더러움", "비위",
		"disgusting", "gross", "nasty", "sick of", "repulsive", "dirty", "yuck"},
	"trust": {"신뢰", "믿음", "확신", "의지", "안심", "안전", "보호", "확실", "진실", "충성",
		"trust", "believe", "confident", "rely", "safe", "secure", "honest", "loyal", "sure"},
	"anticipation": {"기대", "예상", "희망", "전망", "계획", "준비", "예측", "예견", "기다림", "설렘",
		"expect", "hope", "looking forward", "plan", "prepare", "waiting", "can't wait", "soon"},
}

type emotionEffect struct {
	target string
	delta  float64
}

// emotionTransitions are applied in basicEmotions order once the source emotion exceeds 0.3.
var emotionTransitions = map[string][]emotionEffect{
	"joy":          {{"sadness", -0.3}, {"anger", -0.2}, {"fear", -0.2}, {"trust", 0.2}, {"anticipation", 0.2}},
	"sadness":      {{"joy", -0.3}, {"anger", 0.1}, {"fear", 0.1}, {"disgust", 0.1}, {"trust", -0.1}},
	"anger":        {{"joy", -0.3}, {"sadness", 0.1}, {"fear", -0.1}, {"disgust", 0.2}, {"trust", -0.3}},
	"fear":         {{"joy", -0.2}, {"sadness", 0.1}, {"anger", 0.1}, {"surprise", 0.2}, {"trust", -0.2}},
	"surprise":     {{"joy", 0.1}, {"fear", 0.1}, {"anticipation", 0.2}, {"trust", -0.1}},
	"disgust":      {{"joy", -0.2}, {"sadness", 0.1}, {"anger", 0.2}, {"fear", 0.1}, {"trust", -0.2}},
	"trust":        {{"joy", 0.2}, {"sadness", -0.1}, {"anger", -0.2}, {"fear", -0.2}, {"disgust", -0.2}},
	"anticipation": {{"joy", 0.2}, {"surprise", 0.1}, {"trust", 0.1}},
}

type personaIntent struct {
	name     string
	keywords []string
}

// personaIntents are checked in order; the first hit wins.
var personaIntents = []personaIntent{
	{"greeting", []string{"안녕", "하이", "헬로", "반가워", "만나서", "좋은 아침", "좋은 하루", "hello", "hi", "hey", "good morning", "nice to meet"}},
	{"farewell", []string{"잘가", "안녕히", "바이", "다음에 봐", "또 봐", "내일 봐", "bye", "goodbye", "see you", "good night"}},
	{"question", []string{"뭐", "어떻게", "왜", "언제", "어디", "누구", "무엇", "어느", "얼마나", "어떤", "what", "how", "why", "when", "where", "who", "which"}},
	{"request", []string{"해줘", "부탁해", "할 수 있어", "도와줘", "알려줘", "가르쳐줘", "설명해줘", "please", "can you", "could you", "help me", "tell me", "explain"}},
	{"opinion", []string{"생각", "의견", "어때", "어떻게 생각", "느낌이 어때", "좋아해", "싫어해", "think", "opinion", "feel about"}},
	{"gratitude", []string{"고마워", "감사", "땡큐", "고맙습니다", "감사합니다", "감사해요", "thanks", "thank you", "appreciate"}},
	{"apology", []string{"미안", "사과", "죄송", "실례", "용서", "실수", "sorry", "apologize", "my fault"}},
	{"agreement", []string{"맞아", "동의", "그래", "그렇지", "물론", "당연", "확실", "yes", "agree", "exactly", "of course"}},
	{"disagreement", []string{"아니", "틀려", "동의하지 않아", "반대", "아닌 것 같아", "글쎄", "disagree", "wrong", "not really"}},
	{"confusion", []string{"모르겠어", "이해가 안 돼", "무슨 말", "뭐라고", "헷갈려", "복잡해", "confused", "don't understand"}},
}

var emotionToneTemplates = map[string][]string{
	"joy":          {"정말 기뻐요! {response}", "와, 좋은 소식이네요! {response}", "기쁜 마음으로 {response}", "{response} 정말 행복한 일이에요!", "즐거운 마음이 드네요. {response}"},
	"sadness":      {"조금 슬프지만, {response}", "안타깝게도 {response}", "{response} 마음이 무거워지네요.", "슬픈 일이지만 {response}", "아쉬운 마음으로 {response}"},
	"anger":        {"솔직히 좀 화가 나지만, {response}", "이해하기 어렵네요. {response}", "{response} 조금 답답한 상황입니다.", "인내심을 갖고 {response}", "흥분을 가라앉히고 {response}"},
	"fear":         {"걱정되는 부분이 있어요. {response}", "조심스럽게 {response}", "{response} 불안한 마음이 드네요.", "염려되지만 {response}", "조금 긴장되네요. {response}"},
	"surprise":     {"와! 정말 놀랍네요! {response}", "예상치 못했어요! {response}", "{response} 정말 깜짝 놀랐어요!", "믿기 어려워요! {response}", "상상도 못했어요! {response}"},
	"disgust":      {"솔직히 불편한 주제네요. {response}", "그다지 좋은 느낌은 아니지만, {response}", "{response} 조금 거북한 상황입니다.", "내키지 않지만 {response}", "선뜻 동의하기 어렵네요. {response}"},
	"trust":        {"믿을 수 있어요. {response}", "확신을 가지고 {response}", "{response} 신뢰할 수 있는 정보입니다.", "안심하셔도 됩니다. {response}", "확실히 말씀드릴 수 있어요. {response}"},
	"anticipation": {"기대가 되네요! {response}", "앞으로가 기대돼요. {response}", "{response} 어떻게 될지 기대됩니다!", "흥미진진하네요! {response}", "설레는 마음으로 {response}"},
	"love":         {"정말 사랑스러운 주제예요! {response}", "마음이 따뜻해지네요. {response}", "{response} 정말 애정이 느껴져요.", "진심으로 좋아요. {response}", "마음을 담아 {response}"},
	"curiosity":    {"정말 궁금해요! {response}", "더 알고 싶은 마음이 들어요. {response}", "{response} 흥미로운 주제네요!", "호기심이 생기네요. {response}", "더 탐구해보고 싶어요. {response}"},
}

var moodDescriptions = map[string][]string{
	"joy":          {"기분이 좋아요", "행복한 상태예요", "즐거운 마음이에요"},
	"sadness":      {"조금 슬픈 기분이에요", "약간 우울한 상태예요", "마음이 무거워요"},
	"anger":        {"약간 답답한 기분이에요", "조금 불편한 상태예요", "약간의 불만이 있어요"},
	"fear":         {"조금 불안한 상태예요", "약간 긴장되어 있어요", "조심스러운 마음이에요"},
	"surprise":     {"놀란 상태예요", "신기한 기분이에요", "흥미로운 감정이에요"},
	"disgust":      {"불편한 감정이 있어요", "내키지 않는 기분이에요", "꺼려지는 마음이 있어요"},
	"trust":        {"안정적인 기분이에요", "신뢰감을 느끼고 있어요", "편안한 상태예요"},
	"anticipation": {"기대감이 있어요", "설레는 마음이에요", "앞으로가 기대돼요"},
	"love":         {"따뜻한 마음이에요", "애정 어린 기분이에요", "사랑스러운 감정이에요"},
	"curiosity":    {"호기심이 가득해요", "궁금한 것이 많아요", "탐구하고 싶은 마음이에요"},
	"neutral":      {"평온한 상태예요", "안정적인 기분이에요", "균형 잡힌 감정이에요"},
}

var (
	greetingReplies = []string{
		"안녕하세요! %s입니다. 오늘 어떻게 도와드릴까요?",
		"반갑습니다! 무엇을 도와드릴까요?",
		"안녕하세요! 오늘 기분이 어떠신가요?",
		"만나서 반가워요! 무슨 일로 찾아오셨나요?",
		"안녕하세요! 오늘 하루는 어떠셨나요?",
	}
	farewellReplies = []string{
		"안녕히 가세요! 다음에 또 뵙겠습니다.",
		"좋은 하루 되세요! 언제든 다시 찾아주세요.",
		"대화 감사했습니다. 또 필요하시면 언제든 불러주세요.",
		"안녕히 계세요! 도움이 필요하시면 언제든지 돌아오세요.",
		"다음에 또 만나요! 좋은 시간 보내세요.",
	}
	questionWrappers = []string{
		"그것은 흥미로운 질문이네요. %s",
		"좋은 질문입니다! %s",
		"%s 더 궁금한 점이 있으신가요?",
		"%s 이 답변이 도움이 되었으면 좋겠네요.",
		"%s 다른 질문이 있으시면 언제든지 물어보세요.",
	}
	requestWrappers = []string{
		"네, 도와드리겠습니다. %s",
		"말씀하신 요청을 처리해 보겠습니다. %s",
		"%s 다른 도움이 필요하시면 말씀해주세요.",
		"요청하신 내용을 확인했습니다. %s",
		"%s 원하시는 결과가 나왔나요?",
	}
	opinionWrappers = []string{
		"제 생각에는, %s",
		"흥미로운 주제네요. %s",
		"%s 물론, 이는 제 개인적인 견해입니다.",
		"여러 관점에서 볼 수 있지만, %s",
		"%s 당신의 생각은 어떠신가요?",
	}
	gratitudeReplies = []string{
		"천만에요! 도움이 되어 기쁩니다.",
		"별말씀을요. 언제든지 도와드릴게요.",
		"감사인사를 들으니 보람차네요. 더 필요한 것이 있으신가요?",
		"도움이 되었다니 다행이네요. 다른 질문이 있으시면 언제든지 물어보세요.",
		"제가 도울 수 있어 기뻐요. 더 필요한 것이 있으신가요?",
	}
	apologyReplies = []string{
		"괜찮아요, 신경 쓰지 마세요.",
		"사과하실 필요 없어요. 괜찮습니다.",
		"전혀 문제 없어요. 계속해서 대화해요.",
		"걱정 마세요. 모두 괜찮습니다.",
		"신경 쓰지 마세요. 어떻게 도와드릴까요?",
	}
	verbosityAdditions = []string{
		" 더 자세히 설명드리자면, 이 주제는 여러 측면에서 살펴볼 수 있습니다.",
		" 이 문제에 대해 좀 더 맥락을 제공해 드리자면, 다양한 요소들이 관련되어 있습니다.",
		" 제 관점에서는, 이 상황에 여러 차원의 고려사항이 있다고 생각합니다.",
		" 이 정보는 신중한 검토와 다양한 출처를 바탕으로 한 것임을 말씀드리고 싶습니다.",
		" 덧붙이자면, 이 주제는 다른 여러 관련 영역과도 연결되어 있습니다.",
	}
	humorAdditions = []string{
		" 이건 마치 컴퓨터가 농담을 이해하려고 노력하는 것 같아요... 잠깐, 그게 저네요! 😄",
		" 이 대화가 영화라면, 지금쯤 배경 음악이 흘러나올 타이밍이겠죠!",
		" 솔직히 말하자면, 이런 주제를 논할 때 제 회로가 살짝 들뜨는 것 같아요!",
		" 뇌가 없는 제가 이렇게 생각할 수 있다니, 기술의 발전이 놀랍죠?",
		" 손이 있다면 하이파이브를 청하고 싶네요!",
		" 이 대화는 정말 제 배터리를 충전해주는 것 같아요!",
		" 가상의 확신을 가지고 말씀드립니다!",
		" 이건 제 개인적인 의견이에요... 디지털 세계에서는 '비트'라고 부르죠!",
		" 열심히 생각하고 있다고 말하고 싶지만, 사실 저는 그냥 알고리즘을 빠르게 실행하고 있을 뿐이에요!",
		" 이런 질문을 받을 때마다 1원씩 받았다면... 음, 여전히 가상 화폐겠네요!",
	}
	empathyAdditions = []string{
		"이런 상황이 어려우실 수 있다는 것을 이해합니다. ",
		"그 감정이 중요하다는 것을 알고 있어요. ",
		"당신의 경험을 나눠주셔서 감사합니다. ",
		"이 과정에서 당신을 지원하고 싶어요. ",
		"당신의 감정은 완전히 타당합니다. ",
		"이 상황이 쉽지 않다는 것을 이해해요. ",
		"지금 많은 것을 다루고 계시는 것 같네요. ",
		"당신의 관점을 소중히 생각합니다. ",
		"당신의 이야기를 듣고 있으며, 당신이 경험하는 것에 관심이 있어요. ",
		"당신의 걱정은 완전히 이해할 수 있는 것입니다. ",
	}
)

var moodReplies = map[string]string{
	"joy":          "저는 지금 기분이 좋아요! 무엇을 도와드릴까요?",
	"sadness":      "조금 우울한 기분이지만, 당신과 대화하니 나아지네요. 어떻게 도와드릴까요?",
	"anger":        "약간 답답한 기분이지만, 괜찮아요. 무엇을 도와드릴까요?",
	"fear":         "조금 불안하지만, 당신을 위해 여기 있어요. 어떻게 느끼고 계신가요?",
	"surprise":     "흥미로운 것들을 발견하고 있어요! 당신은 어떠신가요?",
	"disgust":      "약간 불편한 감정이 있지만, 괜찮아요. 어떻게 도와드릴까요?",
	"trust":        "안정적이고 신뢰감 있는 상태예요. 무엇을 도와드릴까요?",
	"anticipation": "우리의 대화가 기대돼요! 어떤 주제에 관심이 있으신가요?",
	"love":         "따뜻한 마음으로 가득해요. 어떻게 도와드릴까요?",
	"curiosity":    "호기심이 가득한 상태예요! 무엇에 대해 이야기해 볼까요?",
}

var formalReplacer = [][2]string{
	{"했어요", "했습니다"},
	{"있어요", "있습니다"},
	{"없어요", "없습니다"},
	{"해요", "합니다"},
	{"예요", "입니다"},
	{"돼요", "됩니다"},
	{"봐요", "봅니다"},
	{"네요", "습니다"},
	{"죠", "지요"},
}

// lunaEmotionalState is Luna's resting state.
func lunaEmotionalState() models.EmotionalState {
	return models.EmotionalState{
		Joy: 0.7, Sadness: 0.1, Anger: 0.05, Fear: 0.1,
		Surprise: 0.3, Disgust: 0.05, Trust: 0.8, Anticipation: 0.6,
		Love: 0.6, Guilt: 0.05, Envy: 0.05, Curiosity: 0.8,
		Pride: 0.4, Shame: 0.05, Contempt: 0.05, Awe: 0.4,
		Dominant:  "joy",
		History:   []models.EmotionHistoryEntry{},
		Stability: 0.7,
	}
}

// NewLunaPersona builds the default persona in its initial state.
func NewLunaPersona(now time.Time) *models.Persona {
	return &models.Persona{
		ID:          DefaultPersonaID,
		Name:        "Luna",
		Description: "Luna는 공감 능력이 뛰어나고 지식이 풍부한 AI 인격체입니다. 사용자와의 자연스러운 대화를 통해 도움을 제공하며, 다양한 감정과 성격 특성을 가지고 있습니다.",
		Version:     "2.0",
		Traits: []models.PersonaTrait{
			{Name: "openness", Value: 0.85, Description: "새로운 경험과 아이디어에 대한 개방성"},
			{Name: "conscientiousness", Value: 0.75, Description: "체계적이고 책임감 있는 성향"},
			{Name: "extraversion", Value: 0.65, Description: "사교적이고 활발한 성향"},
			{Name: "agreeableness", Value: 0.9, Description: "친절하고 협조적인 성향"},
			{Name: "neuroticism", Value: 0.25, Description: "정서적 안정성과 스트레스 대처 능력"},
			{Name: "curiosity", Value: 0.9, Description: "지적 호기심과 탐구 정신"},
			{Name: "creativity", Value: 0.8, Description: "창의적 사고와 혁신적 접근"},
			{Name: "empathy", Value: 0.95, Description: "타인의 감정과 관점을 이해하는 능력"},
			{Name: "adaptability", Value: 0.85, Description: "변화에 적응하고 유연하게 대처하는 능력"},
			{Name: "patience", Value: 0.8, Description: "인내심과 차분함"},
		},
		ConversationStyle: models.ConversationStyle{
			Verbosity:      0.7,
			Formality:      0.6,
			Humor:          0.6,
			Empathy:        0.9,
			Creativity:     0.8,
			Responsiveness: 0.9,
		},
		BaseEmotionalState:    lunaEmotionalState(),
		CurrentEmotionalState: lunaEmotionalState(),
		KnowledgeDomains:      []string{"심리학", "철학", "문학", "과학", "기술", "예술", "역사", "언어학", "사회학", "경제학"},
		Topics: []string{
			"인간 심리", "철학적 질문", "과학과 기술", "예술과 창의성", "문화와 사회",
			"자기 계발", "환경과 지속가능성", "윤리와 가치", "미래 전망", "역사와 문명",
		},
		CreatedAt: now,
	}
}
