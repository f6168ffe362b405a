package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is what both a pool and an open transaction offer.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type MenuItemRepository struct {
	db dbtx
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{db: pool}
}

// WithTx runs fn against a repository bound to one transaction. It commits when fn
// succeeds and rolls back otherwise. Nested calls use a savepoint.
func (r *MenuItemRepository) WithTx(ctx context.Context, fn func(repositories.MenuItemRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&MenuItemRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const menuItemColumns = `name, category, price, description, dietary_info, is_available, rating, review_count`

func (r *MenuItemRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS menu_items (
            id           BIGSERIAL PRIMARY KEY,
            name         TEXT NOT NULL,
            category     TEXT NOT NULL,
            price        DOUBLE PRECISION NOT NULL CHECK (price > 0),
            description  TEXT NOT NULL DEFAULT '',
            dietary_info TEXT[] NOT NULL DEFAULT '{}',
            is_available BOOLEAN NOT NULL DEFAULT TRUE,
            rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
            review_count INTEGER NOT NULL DEFAULT 0,
            created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	return err
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error {
	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{
			"name", "category", "price", "description",
			"dietary_info", "is_available", "rating", "review_count",
		},
		pgx.CopyFromSlice(len(menuItems), func(i int) ([]interface{}, error) {
			return menuItemValues(menuItems[i]), nil
		}),
	)
	return err
}

func (r *MenuItemRepository) Create(ctx context.Context, menuItem *models.MenuItem) error {
	query := `
        INSERT INTO menu_items (` + menuItemColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query, menuItemValues(menuItem)...)
	return err
}

func (r *MenuItemRepository) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func (r *MenuItemRepository) GetByCategory(ctx context.Context, category models.Category) ([]*models.MenuItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE category = $1 ORDER BY id`,
		string(category),
	)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}

func (r *MenuItemRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM menu_items")
	return err
}

func menuItemValues(item *models.MenuItem) []interface{} {
	tags := make([]string, len(item.DietaryTags))
	for i, t := range item.DietaryTags {
		tags[i] = string(t)
	}
	return []interface{}{
		item.Name,
		string(item.Category),
		item.Price,
		item.Description,
		tags,
		item.IsAvailable,
		item.Rating,
		item.ReviewCount,
	}
}

// scanMenuItems validates every row the same way a loaded document is validated.
func scanMenuItems(rows pgx.Rows) ([]*models.MenuItem, error) {
	defer rows.Close()

	var menuItems []*models.MenuItem
	for rows.Next() {
		var (
			name, category, description string
			price, rating               float64
			tags                        []string
			isAvailable                 bool
			reviewCount                 int
		)
		if err := rows.Scan(&name, &category, &price, &description, &tags, &isAvailable, &rating, &reviewCount); err != nil {
			return nil, err
		}
		item, err := models.MenuItemFromRecord(models.Record{
			"name":         name,
			"price":        price,
			"description":  description,
			"dietary_info": tags,
			"is_available": isAvailable,
			"rating":       rating,
			"review_count": reviewCount,
		}, models.Category(category))
		if err != nil {
			return nil, fmt.Errorf("menu_items row %q: %w", name, err)
		}
		menuItems = append(menuItems, item)
	}
	return menuItems, rows.Err()
}
