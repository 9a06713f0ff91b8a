package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

// lockUser serializes rotations of one user's ledger on the user row.
func lockUser(tx *gorm.DB, userID uint) error {
	var u models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&u).Error
	return translate(err)
}

func revokeAll(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Token{}).
		Where("user_id = ? AND logged_out = ?", userID, false).
		Update("logged_out", true).Error
}

func insertToken(tx *gorm.DB, t *domain.Token) error {
	row := models.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		UserID:       t.UserID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return translate(err)
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	return nil
}

// RotateUserTokens marks every live token of the user logged out and stores t
// as the only live one.
func (r *GormRepo) RotateUserTokens(ctx context.Context, t *domain.Token) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, t.UserID); err != nil {
			return err
		}
		if err := revokeAll(tx, t.UserID); err != nil {
			return err
		}
		return insertToken(tx, t)
	})
}

// RotateFromRefresh is RotateUserTokens guarded by the presented refresh
// fingerprint still being live. It fails with domain.ErrNotFound otherwise.
func (r *GormRepo) RotateFromRefresh(ctx context.Context, refreshHash string, t *domain.Token) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, t.UserID); err != nil {
			return err
		}
		var current models.Token
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND refresh_token = ? AND logged_out = ?", t.UserID, refreshHash, false).
			First(&current).Error
		if err != nil {
			return translate(err)
		}
		if err := revokeAll(tx, t.UserID); err != nil {
			return err
		}
		return insertToken(tx, t)
	})
}

// RevokeUserTokens logs out every live token of the user.
func (r *GormRepo) RevokeUserTokens(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		return revokeAll(tx, userID)
	})
}

func (r *GormRepo) FindLiveTokenByAccess(ctx context.Context, accessHash string) (*domain.Token, error) {
	var row models.Token
	err := r.DB.WithContext(ctx).
		Where("access_token = ? AND logged_out = ?", accessHash, false).
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	t := toDomainToken(row)
	return &t, nil
}

func (r *GormRepo) LogoutToken(ctx context.Context, accessHash string) error {
	return r.DB.WithContext(ctx).Model(&models.Token{}).
		Where("access_token = ?", accessHash).
		Update("logged_out", true).Error
}

func (r *GormRepo) ListUserTokens(ctx context.Context, userID uint) ([]domain.Token, error) {
	var rows []models.Token
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Token, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainToken(row))
	}
	return out, nil
}
