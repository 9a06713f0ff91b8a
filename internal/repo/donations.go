package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) donations(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Preload("Categories").Preload("Institution")
}

func (r *GormRepo) ListDonations(ctx context.Context) ([]domain.Donation, error) {
	var rows []models.Donation
	if err := r.donations(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDonations(rows), nil
}

func (r *GormRepo) ListDonationsByUser(ctx context.Context, userID uint) ([]domain.Donation, error) {
	var rows []models.Donation
	if err := r.donations(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDonations(rows), nil
}

func (r *GormRepo) GetDonation(ctx context.Context, id uint) (*domain.Donation, error) {
	var row models.Donation
	if err := r.donations(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	d := toDomainDonation(row)
	return &d, nil
}

func (r *GormRepo) CreateDonation(ctx context.Context, d *domain.Donation) error {
	row := toDonationRow(d)
	row.Categories = toCategoryRows(d.Categories)
	if err := r.DB.WithContext(ctx).Omit("Categories.*", "Institution").Create(&row).Error; err != nil {
		return translate(err)
	}
	d.ID = row.ID
	return nil
}

func (r *GormRepo) SaveDonation(ctx context.Context, d *domain.Donation) error {
	row := toDonationRow(d)
	cats := toCategoryRows(d.Categories)

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).
			Where("id = ?", d.ID).
			Select("quantity", "institution_id", "street", "city", "zip_code", "phone_number",
				"pick_up_date", "pick_up_time", "pick_up_comment", "received", "user_id").
			Omit(clause.Associations).
			Updates(&row)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Model(&models.Donation{ID: d.ID}).Association("Categories").Replace(cats)
	})
}

func (r *GormRepo) DeleteDonation(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Donation{ID: id}).Association("Categories").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&models.Donation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *GormRepo) DonationStats(ctx context.Context) (domain.DonationStats, error) {
	var out struct {
		Donations int64
		Bags      int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Donation{}).
		Select("COUNT(*) AS donations, COALESCE(SUM(quantity), 0) AS bags").
		Scan(&out).Error
	if err != nil {
		return domain.DonationStats{}, err
	}
	return domain.DonationStats{Donations: out.Donations, Bags: out.Bags}, nil
}
