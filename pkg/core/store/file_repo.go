package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultModelDir is used by NewFileRepo when no directory is given.
var DefaultModelDir = filepath.Join(".cache", "deal_models")

// FileRepo keeps one JSON file per model. It backs local runs that have no
// database configured.
type FileRepo struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileRepo(dir string) (*FileRepo, error) {
	if dir == "" {
		dir = DefaultModelDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model dir: %w", err)
	}
	return &FileRepo{dir: dir, now: time.Now}, nil
}

func (r *FileRepo) Save(_ context.Context, m *DealModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID != uuid.Nil && m.CreatedAt.IsZero() {
		if prev, err := r.load(m.ID); err == nil {
			m.CreatedAt = prev.CreatedAt
		}
	}
	stamp(m, r.now())
	return r.write(m)
}

func (r *FileRepo) Get(_ context.Context, id uuid.UUID) (*DealModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(id)
}

func (r *FileRepo) ListByDeal(_ context.Context, dealID string) ([]DealModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.scan()
	if err != nil {
		return nil, err
	}
	var out []DealModel
	for _, m := range all {
		if m.DealID == dealID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *FileRepo) Publish(_ context.Context, id uuid.UUID) (*DealModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.load(id)
	if err != nil {
		return nil, err
	}
	all, err := r.scan()
	if err != nil {
		return nil, err
	}
	for i := range all {
		m := &all[i]
		if m.DealID != target.DealID || m.ID == id || !m.IsPublished {
			continue
		}
		m.IsPublished = false
		if err := r.write(m); err != nil {
			return nil, err
		}
	}

	target.IsPublished = true
	target.UpdatedAt = r.now()
	if err := r.write(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (r *FileRepo) path(id uuid.UUID) string {
	return filepath.Join(r.dir, id.String()+".json")
}

func (r *FileRepo) write(m *DealModel) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deal model: %w", err)
	}
	if err := os.WriteFile(r.path(m.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to save deal model file: %w", err)
	}
	return nil
}

func (r *FileRepo) load(id uuid.UUID) (*DealModel, error) {
	data, err := os.ReadFile(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deal model file: %w", err)
	}
	var m DealModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal model: %w", err)
	}
	return &m, nil
}

// scan reads every model file in the directory. Unreadable files are skipped.
func (r *FileRepo) scan() ([]DealModel, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model dir: %w", err)
	}
	var out []DealModel
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			continue
		}
		var m DealModel
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
