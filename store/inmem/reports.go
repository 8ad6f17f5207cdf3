// Package inmem is a Repository that lives only as long as the process.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/store"
)

func NewReportsRepository() *ReportsRepository {
	return &ReportsRepository{
		reports: make(map[uuid.UUID]store.Record),
	}
}

type ReportsRepository struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]store.Record
}

var _ store.Repository = (*ReportsRepository)(nil)

func (r *ReportsRepository) Close() error {
	return nil
}

func (r *ReportsRepository) Create(ctx context.Context, report diagnose.Report) (store.Record, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.Record{}, fmt.Errorf("could not generate ID: %w", err)
	}

	report.Source = ""
	rec := store.Record{
		ID:      newUUID,
		Created: time.Now(),
		Report:  report,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[rec.ID]; ok {
		return store.Record{}, store.ErrConstraintViolation
	}
	r.reports[rec.ID] = rec
	return rec, nil
}

func (r *ReportsRepository) GetByID(ctx context.Context, id uuid.UUID) (store.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.reports[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return rec, nil
}

func (r *ReportsRepository) GetAll(ctx context.Context) ([]store.Record, error) {
	r.mu.RLock()
	all := make([]store.Record, 0, len(r.reports))
	for _, rec := range r.reports {
		all = append(all, rec)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Created.Equal(all[j].Created) {
			return all[i].Created.Before(all[j].Created)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return all, nil
}

func (r *ReportsRepository) Delete(ctx context.Context, id uuid.UUID) (store.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.reports[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	delete(r.reports, id)
	return rec, nil
}
