package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

type MenuFilter struct {
	Category      models.Category
	AvailableOnly bool
}

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// List returns menu items sorted by category then name.
func (r *MenuRepository) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AvailableOnly {
		q = q.Where("available = ?", true)
	}

	items := []models.MenuItem{}
	if err := q.Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "list menu", Err: err}
	}
	return items, nil
}

func (r *MenuRepository) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("menu item %s: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, &utils.RepositoryError{Op: "get menu item", Err: err}
	}
	return &item, nil
}

// FindByIDs returns the items that exist, keyed by id.
func (r *MenuRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	out := make(map[string]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "find menu items", Err: err}
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return &utils.RepositoryError{Op: "create menu item", Err: err}
	}
	return nil
}

// Save replaces the editable fields of an existing item.
func (r *MenuRepository) Save(ctx context.Context, id string, item *models.MenuItem) (*models.MenuItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = item.Name
	existing.Description = item.Description
	existing.Price = item.Price
	existing.Category = item.Category
	existing.Image = item.Image
	existing.Available = item.Available
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "update menu item", Err: err}
	}
	return existing, nil
}

func (r *MenuRepository) SetAvailability(ctx context.Context, id string, available bool) (*models.MenuItem, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(existing).Update("available", available).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "update availability", Err: err}
	}
	existing.Available = available
	return existing, nil
}

// Delete removes the live item; order line items keep their own snapshot.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return &utils.RepositoryError{Op: "delete menu item", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item %s: %w", id, utils.ErrNotFound)
	}
	return nil
}
