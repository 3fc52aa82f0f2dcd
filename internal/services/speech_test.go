package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	res, err := Synthesize(TTSRequest{Text: "Hello there. How are you today?", Rate: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, res.WordCount)
	assert.InDelta(t, 1.2, res.EstimatedDuration, 0.001)
	assert.Equal(t, []string{"Hello there.", "How are you today?"}, res.Chunks)
	assert.Equal(t, "ko-KR", res.Language)
	assert.Equal(t, 1.0, res.Pitch)

	_, err = Synthesize(TTSRequest{Text: "   "})
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

type fakeUploader struct {
	folder string
	err    error
}

func (f *fakeUploader) UploadBytes(_ context.Context, _ []byte, folder string) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return "https://res.cloudinary.com/demo/voice/clip.webm", nil
}

func TestTranscribe(t *testing.T) {
	up := &fakeUploader{}
	res, err := Transcribe(context.Background(), []byte("audio-bytes"), "", up)
	require.NoError(t, err)
	assert.Contains(t, cannedTranscripts, res.Text)
	assert.GreaterOrEqual(t, res.Confidence, 0.85)
	assert.Less(t, res.Confidence, 1.0)
	assert.Equal(t, "voice", up.folder)
	assert.Equal(t, "https://res.cloudinary.com/demo/voice/clip.webm", res.AudioURL)

	again, err := Transcribe(context.Background(), []byte("audio-bytes"), "en-US", &fakeUploader{err: errors.New("down")})
	require.NoError(t, err)
	assert.Equal(t, res.Text, again.Text)
	assert.Empty(t, again.AudioURL)

	_, err = Transcribe(context.Background(), make([]byte, MaxAudioBytes+1), "", nil)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	_, err = Transcribe(context.Background(), nil, "", nil)
	assert.Error(t, err)
}
