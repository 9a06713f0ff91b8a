package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainUsers(rows), nil
}

func (r *GormRepo) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	var rows []models.User
	err := r.DB.WithContext(ctx).
		Preload("Roles").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role).
		Order("users.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainUsers(rows), nil
}

func (r *GormRepo) findUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where(query, arg).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	u := toDomainUser(row)
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormRepo) FindUserByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findUser(ctx, "token = ?", token)
}

func (r *GormRepo) CreateUser(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	if err := r.DB.WithContext(ctx).Omit("Roles.*").Create(&row).Error; err != nil {
		return translate(err)
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	return nil
}

// SaveUser writes the scalar columns and makes the stored roles match u.Roles.
func (r *GormRepo) SaveUser(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	roles := row.Roles
	row.Roles = nil

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", u.ID).
			Select("email", "name", "last_name", "password_hash", "enabled", "token").
			Updates(&row)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Model(&models.User{ID: u.ID}).Association("Roles").Replace(roles)
	})
}

func (r *GormRepo) ClearUserRoles(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{ID: id}).Association("Roles").Clear()
}

// DeleteUser removes the user together with the rows it owns. Donations keep
// their history without an owner.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.User
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&row).Association("Roles").Clear(); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("email = ?", row.Email).Delete(&models.RecoveryPassword{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Donation{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
