package favorite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	createSavedItemsTable = `
		CREATE TABLE IF NOT EXISTS saved_items (
			id uuid PRIMARY KEY,
			user_id integer NOT NULL,
			product_id uuid NOT NULL,
			price_when_saved numeric(10,2),
			saved_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (user_id, product_id)
		)
	`
	addSavedItemQuery = `
		INSERT INTO saved_items (id, user_id, product_id, price_when_saved, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING id
	`
	removeSavedItemQuery = `
		DELETE FROM saved_items
		WHERE user_id = $1 AND product_id = $2
	`
	listSavedItemsQuery = `
		SELECT id, user_id, product_id, price_when_saved, saved_at
		FROM saved_items
		WHERE user_id = $1
		ORDER BY saved_at DESC
	`
	savedProductsQuery = `
		SELECT product_id
		FROM saved_items
		WHERE user_id = $1 AND product_id = ANY($2::uuid[])
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the saved_items table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSavedItemsTable)
	return errors.Wrap(err, "create saved_items")
}

func (r *PostgresRepository) Add(ctx context.Context, item SavedItem) (SavedItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	price := decimal.NullDecimal{}
	if item.PriceWhenSaved != nil {
		price = decimal.NewNullDecimal(*item.PriceWhenSaved)
	}
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, addSavedItemQuery, item.ID, item.UserID, item.ProductID, price, item.SavedAt).Scan(&id)
	if err == sql.ErrNoRows {
		return SavedItem{}, ErrAlreadySaved
	}
	if err != nil {
		return SavedItem{}, errors.Wrap(err, "insert saved item")
	}
	item.ID = id
	return item, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID int, productID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, removeSavedItemQuery, userID, productID)
	if err != nil {
		return errors.Wrap(err, "delete saved item")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete saved item")
	}
	if n == 0 {
		return ErrNotSaved
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]SavedItem, error) {
	rows, err := r.db.QueryContext(ctx, listSavedItemsQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list saved items")
	}
	defer rows.Close()

	out := make([]SavedItem, 0)
	for rows.Next() {
		var (
			it    SavedItem
			price decimal.NullDecimal
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &price, &it.SavedAt); err != nil {
			return nil, errors.Wrap(err, "scan saved item")
		}
		if price.Valid {
			p := price.Decimal
			it.PriceWhenSaved = &p
		}
		out = append(out, it)
	}
	return out, errors.Wrap(rows.Err(), "list saved items")
}

func (r *PostgresRepository) Saved(ctx context.Context, userID int, productIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
		out[id] = false
	}
	rows, err := r.db.QueryContext(ctx, savedProductsQuery, userID, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "query saved products")
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan saved product")
		}
		out[id] = true
	}
	return out, errors.Wrap(rows.Err(), "query saved products")
}
