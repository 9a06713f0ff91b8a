package repo

import (
	"context"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func (r *GormRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var rows []models.Role
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainRole(row))
	}
	return out, nil
}

// RolesByIDs fails with domain.ErrNotFound unless every id exists.
func (r *GormRepo) RolesByIDs(ctx context.Context, ids []uint) ([]domain.Role, error) {
	var rows []models.Role
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(uniq(ids)) {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainRole(row))
	}
	return out, nil
}

func (r *GormRepo) EnsureRole(ctx context.Context, name string) (*domain.Role, error) {
	row := models.Role{Name: name}
	if err := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&row).Error; err != nil {
		return nil, translate(err)
	}
	role := toDomainRole(row)
	return &role, nil
}

func uniq(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
