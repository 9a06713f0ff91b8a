package repo

import (
	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/models"
)

func toDomainRole(r models.Role) domain.Role {
	return domain.Role{ID: r.ID, Name: r.Name}
}

func toRoleRows(roles []domain.Role) []models.Role {
	out := make([]models.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, models.Role{ID: r.ID, Name: r.Name})
	}
	return out
}

func toDomainUser(u models.User) domain.User {
	roles := make([]domain.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, toDomainRole(r))
	}
	return domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Enabled:      u.Enabled,
		Roles:        roles,
		Token:        u.Token,
		CreatedAt:    u.CreatedAt,
	}
}

func toUserRow(u *domain.User) models.User {
	return models.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Enabled:      u.Enabled,
		Token:        u.Token,
		Roles:        toRoleRows(u.Roles),
		CreatedAt:    u.CreatedAt,
	}
}

func toDomainUsers(rows []models.User) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainUser(r))
	}
	return out
}

func toDomainToken(t models.Token) domain.Token {
	return domain.Token{
		ID:           t.ID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		LoggedOut:    t.LoggedOut,
		UserID:       t.UserID,
		CreatedAt:    t.CreatedAt,
	}
}

func toDomainRecovery(r models.RecoveryPassword) domain.RecoveryPassword {
	return domain.RecoveryPassword{ID: r.ID, Email: r.Email, Token: r.Token, IssuedAt: r.IssuedAt}
}

func toDomainCategory(c models.Category) domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name}
}

func toDomainCategories(rows []models.Category) []domain.Category {
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainCategory(r))
	}
	return out
}

func toCategoryRows(cats []domain.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, models.Category{ID: c.ID, Name: c.Name})
	}
	return out
}

func toDomainInstitution(i models.Institution) domain.Institution {
	return domain.Institution{ID: i.ID, Name: i.Name, Description: i.Description}
}

func toDomainInstitutions(rows []models.Institution) []domain.Institution {
	out := make([]domain.Institution, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainInstitution(r))
	}
	return out
}

func toDomainDonation(d models.Donation) domain.Donation {
	out := domain.Donation{
		ID:            d.ID,
		Quantity:      d.Quantity,
		Categories:    toDomainCategories(d.Categories),
		InstitutionID: d.InstitutionID,
		Address: domain.Address{
			Street:      d.Street,
			City:        d.City,
			ZipCode:     d.ZipCode,
			PhoneNumber: d.PhoneNumber,
		},
		PickUpDate:    d.PickUpDate,
		PickUpTime:    d.PickUpTime,
		PickUpComment: d.PickUpComment,
		Received:      d.Received,
		CreatedAt:     d.CreatedAt,
		UserID:        d.UserID,
	}
	if d.Institution.ID != 0 {
		inst := toDomainInstitution(d.Institution)
		out.Institution = &inst
	}
	return out
}

func toDonationRow(d *domain.Donation) models.Donation {
	return models.Donation{
		ID:            d.ID,
		Quantity:      d.Quantity,
		InstitutionID: d.InstitutionID,
		Street:        d.Address.Street,
		City:          d.Address.City,
		ZipCode:       d.Address.ZipCode,
		PhoneNumber:   d.Address.PhoneNumber,
		PickUpDate:    d.PickUpDate,
		PickUpTime:    d.PickUpTime,
		PickUpComment: d.PickUpComment,
		Received:      d.Received,
		CreatedAt:     d.CreatedAt,
		UserID:        d.UserID,
	}
}

func toDomainDonations(rows []models.Donation) []domain.Donation {
	out := make([]domain.Donation, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainDonation(r))
	}
	return out
}
