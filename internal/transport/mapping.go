package transport

import (
	"time"

	"github.com/Skotchmaster/charity/internal/domain"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		LastName:  u.LastName,
		Enabled:   u.Enabled,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func NewCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func NewCategoryResponses(cats []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

func NewInstitutionResponse(i domain.Institution) InstitutionResponse {
	return InstitutionResponse{ID: i.ID, Name: i.Name, Description: i.Description}
}

func NewInstitutionResponses(list []domain.Institution) []InstitutionResponse {
	out := make([]InstitutionResponse, 0, len(list))
	for _, i := range list {
		out = append(out, NewInstitutionResponse(i))
	}
	return out
}

func NewDonationResponse(d domain.Donation) DonationResponse {
	out := DonationResponse{
		ID:            d.ID,
		Quantity:      d.Quantity,
		Categories:    NewCategoryResponses(d.Categories),
		Street:        d.Address.Street,
		City:          d.Address.City,
		ZipCode:       d.Address.ZipCode,
		PhoneNumber:   d.Address.PhoneNumber,
		PickUpDate:    d.PickUpDate.Format(DateLayout),
		PickUpTime:    d.PickUpTime,
		PickUpComment: d.PickUpComment,
		Received:      d.Received,
		CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
		UserID:        d.UserID,
	}
	if d.Institution != nil {
		inst := NewInstitutionResponse(*d.Institution)
		out.Institution = &inst
	}
	return out
}

func NewDonationResponses(list []domain.Donation) []DonationResponse {
	out := make([]DonationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, NewDonationResponse(d))
	}
	return out
}
