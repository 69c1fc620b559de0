// Package source defines the data-source collaborator the catalog fetches
// from, with an in-process fixture implementation and a Postgres one.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/wichananm65/able-backend/internal/domain"
)

// Kind names an entity collection.
type Kind string

const (
	KindProducts   Kind = "products"
	KindBrands     Kind = "brands"
	KindCategories Kind = "categories"
	KindFeatures   Kind = "features"
)

// Kinds lists every collection the catalog caches.
var Kinds = []Kind{KindProducts, KindBrands, KindCategories, KindFeatures}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Condition is an equality filter on a column.
type Condition struct {
	Column string
	Value  any
}

// Ordering sorts results by a column.
type Ordering struct {
	Column    string
	Ascending bool
}

// Query narrows and orders a fetched collection. The zero value fetches everything.
type Query struct {
	Conditions []Condition
	Orderings  []Ordering
	Limit      int
}

// Eq returns a copy of q with an equality condition appended.
func (q Query) Eq(column string, value any) Query {
	out := q
	out.Conditions = append(append([]Condition(nil), q.Conditions...), Condition{Column: column, Value: value})
	return out
}

// Order returns a copy of q with an ordering appended.
func (q Query) Order(column string, ascending bool) Query {
	out := q
	out.Orderings = append(append([]Ordering(nil), q.Orderings...), Ordering{Column: column, Ascending: ascending})
	return out
}

// Source fetches whole collections. Implementations must be safe for
// concurrent use; they own any network-level timeout.
type Source interface {
	Products(ctx context.Context, q Query) ([]domain.Product, error)
	Brands(ctx context.Context, q Query) ([]domain.Brand, error)
	Categories(ctx context.Context, q Query) ([]domain.Category, error)
	Features(ctx context.Context, q Query) ([]domain.Feature, error)
}

var (
	ErrNetwork  = errors.New("network failure")
	ErrDecode   = errors.New("decode failure")
	ErrNotFound = errors.New("collection not found")
)

// FetchError reports a failed fetch. errors.Is matches both the reason
// sentinel and the underlying cause.
type FetchError struct {
	Collection string
	Reason     error
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %v", e.Collection, e.Reason)
	}
	return fmt.Sprintf("fetch %s: %v: %v", e.Collection, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

func newFetchError(collection string, reason, err error) *FetchError {
	return &FetchError{Collection: collection, Reason: reason, Err: err}
}
