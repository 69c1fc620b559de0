package favorite

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrAlreadySaved    = errors.New("product already saved")
	ErrNotSaved        = errors.New("product not saved")
	ErrProductNotFound = errors.New("product not found")
)

// Repository stores saved items.
type Repository interface {
	Add(ctx context.Context, item SavedItem) (SavedItem, error)
	Remove(ctx context.Context, userID int, productID uuid.UUID) error
	// List returns a user's items, most recently saved first.
	List(ctx context.Context, userID int) ([]SavedItem, error)
	// Saved reports which of productIDs the user has saved.
	Saved(ctx context.Context, userID int, productIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[int][]SavedItem
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: map[int][]SavedItem{}}
}

func (r *InMemoryRepository) Add(_ context.Context, item SavedItem) (SavedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items[item.UserID] {
		if it.ProductID == item.ProductID {
			return SavedItem{}, ErrAlreadySaved
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.UserID] = append(r.items[item.UserID], item)
	return item, nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID int, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			r.items[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotSaved
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]SavedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SavedItem, len(r.items[userID]))
	copy(out, r.items[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (r *InMemoryRepository) Saved(_ context.Context, userID int, productIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		out[id] = false
	}
	for _, it := range r.items[userID] {
		if _, ok := out[it.ProductID]; ok {
			out[it.ProductID] = true
		}
	}
	return out, nil
}
