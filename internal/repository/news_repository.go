package repository

import (
	"database/sql"
	"tickerfuse/internal/model"
)

type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// SaveItem inserts one fused item; returns false when the URL already exists.
func (r *NewsRepository) SaveItem(item *model.StoredItem) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO news_item(ticker, title, url, source_domain, source, language, snippet, published_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`, item.Ticker, item.Title, item.URL, item.SourceDomain, item.Source, item.Language, item.Snippet, item.PublishedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	item.ID = id
	return true, nil
}

func (r *NewsRepository) GetRecentByTicker(ticker string, limit int) ([]model.StoredItem, error) {
	rows, err := r.db.Query(`
		SELECT id, ticker, title, url, source_domain, source, language, snippet, published_at, fetched_at
		FROM news_item
		WHERE ticker = $1
		ORDER BY published_at DESC
		LIMIT $2
	`, ticker, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *NewsRepository) GetFeed(limit, offset int) ([]model.StoredItem, error) {
	rows, err := r.db.Query(`
		SELECT id, ticker, title, url, source_domain, source, language, snippet, published_at, fetched_at
		FROM news_item
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *NewsRepository) GetFeedTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM news_item`).Scan(&total)
	return total, err
}

func scanItems(rows *sql.Rows) ([]model.StoredItem, error) {
	var items []model.StoredItem
	for rows.Next() {
		var item model.StoredItem
		err := rows.Scan(&item.ID, &item.Ticker, &item.Title, &item.URL, &item.SourceDomain,
			&item.Source, &item.Language, &item.Snippet, &item.PublishedAt, &item.FetchedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
