package handler

type ItemResponse struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	SourceDomain string `json:"source_domain"`
	PublishedAt  string `json:"published_at,omitempty"`
	Language     string `json:"language"`
	Snippet      string `json:"snippet,omitempty"`
	Source       string `json:"source"`
}

type NewsResponse struct {
	Ticker string         `json:"ticker"`
	Items  []ItemResponse `json:"items"`
	Count  int            `json:"count"`
}

type StoredItemResponse struct {
	ID           int64  `json:"id"`
	Ticker       string `json:"ticker"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	SourceDomain string `json:"source_domain"`
	Source       string `json:"source"`
	PublishedAt  string `json:"published_at"`
}

type FeedResponse struct {
	Items  []StoredItemResponse `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type IncidentResponse struct {
	ID           int64  `json:"id"`
	JobType      string `json:"job_type"`
	Provider     string `json:"provider"`
	Event        string `json:"event,omitempty"`
	Ticker       string `json:"ticker,omitempty"`
	ErrorMessage string `json:"error_message"`
	CreatedAt    string `json:"created_at"`
}

type BriefResponse struct {
	ID        int64    `json:"id"`
	Ticker    string   `json:"ticker"`
	Paragraph string   `json:"paragraph"`
	Bullets   []string `json:"bullets"`
	ItemCount int      `json:"item_count"`
	ModelUsed string   `json:"model_used"`
	CreatedAt string   `json:"created_at"`
}
