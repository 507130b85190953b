package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/projection"
)

// ErrNotFound is returned when no model has the requested ID.
var ErrNotFound = errors.New("deal model not found")

// DealModel is a saved set of assumptions for a deal, with the projection
// computed when it was last saved.
type DealModel struct {
	ID          uuid.UUID                    `json:"id"`
	DealID      string                       `json:"dealId"`
	Name        string                       `json:"name"`
	Assumptions assumption.Assumptions       `json:"assumptions"`
	Result      *projection.ProjectionResult `json:"result,omitempty"`
	IsPublished bool                         `json:"isPublished"`
	CreatedAt   time.Time                    `json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

// Repository stores deal models.
type Repository interface {
	// Save inserts or replaces m. A zero ID is assigned before writing and
	// CreatedAt is kept from the first save.
	Save(ctx context.Context, m *DealModel) error
	Get(ctx context.Context, id uuid.UUID) (*DealModel, error)
	// ListByDeal returns a deal's models, most recently updated first.
	ListByDeal(ctx context.Context, dealID string) ([]DealModel, error)
	// Publish marks a model as the deal's published case and unpublishes
	// the deal's other models.
	Publish(ctx context.Context, id uuid.UUID) (*DealModel, error)
}

func stamp(m *DealModel, now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
