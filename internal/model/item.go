package model

import "time"

type StoredItem struct {
	ID           int64
	Ticker       string
	Title        string
	URL          string
	SourceDomain string
	Source       string
	Language     string
	Snippet      string
	PublishedAt  time.Time
	FetchedAt    time.Time
}

type TickerBrief struct {
	ID        int64
	Ticker    string
	Paragraph string
	Bullets   []string
	ItemCount int
	ModelUsed string
	CreatedAt time.Time
}
