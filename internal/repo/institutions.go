package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) ListInstitutions(ctx context.Context) ([]domain.Institution, error) {
	var rows []models.Institution
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInstitutions(rows), nil
}

func (r *GormRepo) GetInstitution(ctx context.Context, id uint) (*domain.Institution, error) {
	var row models.Institution
	if err := r.DB.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	i := toDomainInstitution(row)
	return &i, nil
}

func (r *GormRepo) CreateInstitution(ctx context.Context, i *domain.Institution) error {
	row := models.Institution{Name: i.Name, Description: i.Description}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	i.ID = row.ID
	return nil
}

func (r *GormRepo) SaveInstitution(ctx context.Context, i *domain.Institution) error {
	res := r.DB.WithContext(ctx).Model(&models.Institution{}).
		Where("id = ?", i.ID).
		Updates(map[string]any{"name": i.Name, "description": i.Description})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteInstitution refuses with domain.ErrConflict while donations point at it.
func (r *GormRepo) DeleteInstitution(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Donation{}).Where("institution_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: institution has %d donations", domain.ErrConflict, refs)
		}
		res := tx.Delete(&models.Institution{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchInstitutions is a plain substring match used when no search index is configured.
// Wildcards in q match literally.
func (r *GormRepo) SearchInstitutions(ctx context.Context, q string, limit int) ([]domain.Institution, error) {
	like := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
	var rows []models.Institution
	err := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainInstitutions(rows), nil
}
