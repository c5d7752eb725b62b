package llm

import (
	"context"
	"time"
)

type BriefInput struct {
	Headline    string
	Snippet     string
	Domain      string
	PublishedAt time.Time
	URL         string
}

type BriefResult struct {
	Paragraph string
	Bullets   []string
	ModelUsed string
}

type BriefClient interface {
	TickerBrief(ctx context.Context, ticker string, items []BriefInput) (*BriefResult, error)
}
