package models

type CSEImage struct {
	Src string `json:"src"`
}

type Pagemap struct {
	CSEImage []CSEImage `json:"cse_image,omitempty"`
}

// SearchResult mirrors one item of the Google Custom Search JSON API.
type SearchResult struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Snippet     string   `json:"snippet"`
	DisplayLink string   `json:"displayLink,omitempty"`
	Pagemap     *Pagemap `json:"pagemap,omitempty"`
}

// ImageURL returns the first cse_image src, or "".
func (r SearchResult) ImageURL() string {
	if r.Pagemap == nil || len(r.Pagemap.CSEImage) == 0 {
		return ""
	}
	return r.Pagemap.CSEImage[0].Src
}

type SearchInformation struct {
	TotalResults string  `json:"totalResults"`
	SearchTime   float64 `json:"searchTime"`
}

type SearchResponse struct {
	Items             []SearchResult    `json:"items"`
	SearchInformation SearchInformation `json:"searchInformation"`
	UsingMockResults  bool              `json:"usingMockResults"`
}

// KeyInformation is the condensed view of a result used by chat and oracle search.
type KeyInformation struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	HasImage bool   `json:"hasImage"`
}
