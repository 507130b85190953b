package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ModelRepo stores deal models in Postgres. The model body lives in a JSONB
// column; the id, deal, publish flag and timestamps are real columns and win
// over whatever the body carries.
type ModelRepo struct {
	db  DBTX
	now func() time.Time
}

// NewModelRepo creates a repository over db. A nil db uses the shared pool.
func NewModelRepo(db DBTX) *ModelRepo {
	if db == nil {
		if p := GetPool(); p != nil {
			db = p
		}
	}
	return &ModelRepo{db: db, now: time.Now}
}

const (
	upsertModel = `
		INSERT INTO deal_models (id, deal_id, name, is_published, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			deal_id = EXCLUDED.deal_id,
			name = EXCLUDED.name,
			is_published = EXCLUDED.is_published,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	selectModel = `
		SELECT data, is_published, created_at, updated_at
		FROM deal_models
		WHERE id = $1`

	selectModelsByDeal = `
		SELECT data, is_published, created_at, updated_at
		FROM deal_models
		WHERE deal_id = $1
		ORDER BY updated_at DESC, id`

	publishModel = `
		UPDATE deal_models
		SET is_published = (id = $1),
			updated_at = CASE WHEN id = $1 THEN $2 ELSE updated_at END
		WHERE deal_id = (SELECT deal_id FROM deal_models WHERE id = $1)`
)

func (r *ModelRepo) Save(ctx context.Context, m *DealModel) error {
	if r.db == nil {
		return fmt.Errorf("database pool not initialized")
	}
	stamp(m, r.now())

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal deal model: %w", err)
	}

	var created time.Time
	err = r.db.QueryRow(ctx, upsertModel,
		m.ID.String(), m.DealID, m.Name, m.IsPublished, data, m.CreatedAt, m.UpdatedAt,
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("failed to save deal model: %w", err)
	}
	m.CreatedAt = created
	return nil
}

func (r *ModelRepo) Get(ctx context.Context, id uuid.UUID) (*DealModel, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	m, err := scanModel(r.db.QueryRow(ctx, selectModel, id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deal model: %w", err)
	}
	return m, nil
}

func (r *ModelRepo) ListByDeal(ctx context.Context, dealID string) ([]DealModel, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	rows, err := r.db.Query(ctx, selectModelsByDeal, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deal models: %w", err)
	}
	defer rows.Close()

	var out []DealModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal model: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list deal models: %w", err)
	}
	return out, nil
}

func (r *ModelRepo) Publish(ctx context.Context, id uuid.UUID) (*DealModel, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	tag, err := r.db.Exec(ctx, publishModel, id.String(), r.now())
	if err != nil {
		return nil, fmt.Errorf("failed to publish deal model: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Get(ctx, id)
}

func scanModel(row pgx.Row) (*DealModel, error) {
	var (
		data      []byte
		published bool
		created   time.Time
		updated   time.Time
	)
	if err := row.Scan(&data, &published, &created, &updated); err != nil {
		return nil, err
	}

	var m DealModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal model: %w", err)
	}
	m.IsPublished = published
	m.CreatedAt = created
	m.UpdatedAt = updated
	return &m, nil
}
