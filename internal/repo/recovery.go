package repo

import (
	"context"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) FindRecoveryByToken(ctx context.Context, token string) (*domain.RecoveryPassword, error) {
	var row models.RecoveryPassword
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	rec := toDomainRecovery(row)
	return &rec, nil
}

func (r *GormRepo) DeleteRecoveryByEmail(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.RecoveryPassword{}).Error
}

func (r *GormRepo) CreateRecovery(ctx context.Context, rec *domain.RecoveryPassword) error {
	row := models.RecoveryPassword{Email: rec.Email, Token: rec.Token, IssuedAt: rec.IssuedAt}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	rec.ID = row.ID
	return nil
}

func (r *GormRepo) DeleteRecovery(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.RecoveryPassword{}, id).Error
}
