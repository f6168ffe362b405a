package repositories

import (
	"context"

	"github.com/chrisdamba/menuboard/internal/models"
)

// MenuItemRepository stores a flat copy of one catalog. Items come back in the order
// they were written.
type MenuItemRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error
	Create(ctx context.Context, menuItem *models.MenuItem) error
	GetAll(ctx context.Context) ([]*models.MenuItem, error)
	GetByCategory(ctx context.Context, category models.Category) ([]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
	WithTx(ctx context.Context, fn func(MenuItemRepository) error) error
}
