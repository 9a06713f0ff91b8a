package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainCategories(rows), nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	var row models.Category
	if err := r.DB.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	c := toDomainCategory(row)
	return &c, nil
}

// CategoriesByIDs fails with domain.ErrNotFound unless every id exists.
func (r *GormRepo) CategoriesByIDs(ctx context.Context, ids []uint) ([]domain.Category, error) {
	var rows []models.Category
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(uniq(ids)) {
		return nil, domain.ErrNotFound
	}
	return toDomainCategories(rows), nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	row := models.Category{Name: c.Name}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	c.ID = row.ID
	return nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *domain.Category) error {
	res := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", c.ID).Update("name", c.Name)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCategory refuses with domain.ErrConflict while donations are tagged with it.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Table("donation_categories").Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: category has %d donations", domain.ErrConflict, refs)
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
