// Package dealmodel saves and publishes projected deal models.
package dealmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/logger"
	"levfin_model/pkg/core/projection"
	"levfin_model/pkg/core/store"
)

var (
	// ErrNotPublished is returned when a published result is requested for a
	// draft model.
	ErrNotPublished = errors.New("deal model is not published")
	// ErrNoPublishedModel is returned when a deal has no published model.
	ErrNoPublishedModel = errors.New("deal has no published model")
)

// Service projects assumptions on save and serves published results,
// through the cache when one is configured.
type Service struct {
	engine *projection.ProjectionEngine
	repo   store.Repository
	cache  *store.PublishedCache
	log    logger.Logger
}

// NewService wires the service. cache may be nil.
func NewService(engine *projection.ProjectionEngine, repo store.Repository, cache *store.PublishedCache, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{engine: engine, repo: repo, cache: cache, log: log}
}

// SaveDraft projects a and stores it as an unpublished model. A non-nil id
// replaces that model, which then needs publishing again.
func (s *Service) SaveDraft(ctx context.Context, id uuid.UUID, dealID, name string, a assumption.Assumptions) (*store.DealModel, error) {
	if dealID == "" {
		return nil, fmt.Errorf("deal id is required")
	}
	res, err := s.engine.Run(a)
	if err != nil {
		return nil, err
	}

	m := &store.DealModel{
		ID:          id,
		DealID:      dealID,
		Name:        name,
		Assumptions: a.Clone(),
		Result:      &res,
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate(ctx, m.ID)

	s.log.Info("deal model saved", map[string]interface{}{
		"model_id":      m.ID.String(),
		"deal_id":       dealID,
		"exit_leverage": res.Summary.ExitLeverage,
	})
	return m, nil
}

// Publish marks id as its deal's published model and primes the cache. A
// model whose assumptions no longer project is left unpublished.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*store.DealModel, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.ensureResult(draft)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Publish(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Result == nil {
		m.Result = res
	}

	siblings, err := s.repo.ListByDeal(ctx, m.DealID)
	if err != nil {
		s.log.WithError(err).Warn("could not list siblings for cache invalidation", map[string]interface{}{"deal_id": m.DealID})
	}
	var stale []uuid.UUID
	for _, sib := range siblings {
		if sib.ID != m.ID {
			stale = append(stale, sib.ID)
		}
	}
	s.invalidate(ctx, stale...)
	s.prime(ctx, m)

	s.log.Info("deal model published", map[string]interface{}{"model_id": id.String(), "deal_id": m.DealID})
	return m, nil
}

// PublishedResult returns the projection of a published model.
func (s *Service) PublishedResult(ctx context.Context, id uuid.UUID) (*projection.ProjectionResult, error) {
	if s.cache != nil {
		res, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).Warn("published cache read failed", map[string]interface{}{"model_id": id.String()})
		} else if ok {
			return res, nil
		}
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsPublished {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, id)
	}
	res, err := s.ensureResult(m)
	if err != nil {
		return nil, err
	}
	s.prime(ctx, m)
	return res, nil
}

// PublishedForDeal returns the deal's published model.
func (s *Service) PublishedForDeal(ctx context.Context, dealID string) (*store.DealModel, error) {
	models, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].IsPublished {
			m := &models[i]
			res, err := s.PublishedResult(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			m.Result = res
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPublishedModel, dealID)
}

// ensureResult projects m when it was stored without a result.
func (s *Service) ensureResult(m *store.DealModel) (*projection.ProjectionResult, error) {
	if m.Result != nil {
		return m.Result, nil
	}
	res, err := s.engine.Run(m.Assumptions)
	if err != nil {
		return nil, fmt.Errorf("project model %s: %w", m.ID, err)
	}
	m.Result = &res
	return m.Result, nil
}

func (s *Service) prime(ctx context.Context, m *store.DealModel) {
	if s.cache == nil || m.Result == nil {
		return
	}
	if err := s.cache.Put(ctx, m.ID, m.Result); err != nil {
		s.log.WithError(err).Warn("published cache write failed", map[string]interface{}{"model_id": m.ID.String()})
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.WithError(err).Warn("published cache invalidation failed", map[string]interface{}{"models": len(ids)})
	}
}
