package repository

import (
	"database/sql"
	"encoding/json"
	"tickerfuse/internal/model"
)

type BriefRepository struct {
	db *sql.DB
}

func NewBriefRepository(db *sql.DB) *BriefRepository {
	return &BriefRepository{db: db}
}

func (r *BriefRepository) SaveBrief(brief *model.TickerBrief) error {
	bullets, err := json.Marshal(brief.Bullets)
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO ticker_brief(ticker, paragraph, bullets, item_count, model_used)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id
	`, brief.Ticker, brief.Paragraph, bullets, brief.ItemCount, brief.ModelUsed).Scan(&brief.ID)
}

func (r *BriefRepository) GetLatestBrief(ticker string) (*model.TickerBrief, error) {
	var brief model.TickerBrief
	var bulletsJSON []byte
	err := r.db.QueryRow(`
		SELECT id, ticker, paragraph, bullets, item_count, model_used, created_at
		FROM ticker_brief
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, ticker).Scan(&brief.ID, &brief.Ticker, &brief.Paragraph, &bulletsJSON, &brief.ItemCount, &brief.ModelUsed, &brief.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bulletsJSON, &brief.Bullets); err != nil {
		return nil, err
	}

	return &brief, nil
}
