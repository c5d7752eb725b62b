package repository

import (
	"database/sql"
	"tickerfuse/internal/model"
)

// IncidentRepository is the durable incident store behind the retry layer.
type IncidentRepository struct {
	db *sql.DB
}

func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) RecordIncident(jobType, provider, event, ticker, message string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO incident(job_type, provider, event, ticker, error_message)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id
	`, jobType, provider, event, ticker, message).Scan(&id)

	if err != nil {
		return 0, err
	}
	return id, nil
}

// ResolveIncidents closes the most recent open incident for the
// (job_type, provider[, event][, ticker]) key and returns how many rows
// transitioned. Empty event/ticker match any.
func (r *IncidentRepository) ResolveIncidents(jobType, provider, event, ticker, resolvedBy string) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE incident SET resolved_at = NOW(), resolved_by = $5
		WHERE id IN (
			SELECT id FROM incident
			WHERE job_type = $1 AND provider = $2
				AND ($3 = '' OR event = $3)
				AND ($4 = '' OR ticker = $4)
				AND resolved_at IS NULL
			ORDER BY created_at DESC
			LIMIT 1
		)
	`, jobType, provider, event, ticker, resolvedBy)

	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *IncidentRepository) ListUnresolved(limit int) ([]model.Incident, error) {
	rows, err := r.db.Query(`
		SELECT id, job_type, provider, event, ticker, error_message, created_at, resolved_at, resolved_by
		FROM incident
		WHERE resolved_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var inc model.Incident
		var resolvedAt sql.NullTime
		var resolvedBy sql.NullString
		err := rows.Scan(&inc.ID, &inc.JobType, &inc.Provider, &inc.Event, &inc.Ticker,
			&inc.ErrorMessage, &inc.CreatedAt, &resolvedAt, &resolvedBy)
		if err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			inc.ResolvedAt = &resolvedAt.Time
		}
		inc.ResolvedBy = resolvedBy.String
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incidents, nil
}
