package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Roles  []string
}

func (a Actor) Has(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.Has(domain.RoleAdmin) || a.Has(domain.RoleSuperAdmin)
}

type DonationService struct {
	Donations    DonationStore
	Categories   CategoryStore
	Institutions InstitutionStore
	Users        UserStore
	Events       Publisher
	Now          func() time.Time
}

func (s *DonationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DonationService) List(ctx context.Context) ([]domain.Donation, error) {
	return s.Donations.ListDonations(ctx)
}

func (s *DonationService) ListByUser(ctx context.Context, userID uint) ([]domain.Donation, error) {
	return s.Donations.ListDonationsByUser(ctx, userID)
}

func (s *DonationService) Get(ctx context.Context, id uint) (*domain.Donation, error) {
	return s.Donations.GetDonation(ctx, id)
}

func (s *DonationService) Stats(ctx context.Context) (domain.DonationStats, error) {
	return s.Donations.DonationStats(ctx)
}

func (s *DonationService) resolveCategories(ctx context.Context, verr *ValidationError, ids []uint) []domain.Category {
	cats, err := s.Categories.CategoriesByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add("categoryIdList", "contains an unknown category")
		} else {
			verr.Add("categoryIdList", "cannot be resolved")
			logging.FromContext(ctx).Error("resolve_categories_error", "error", err)
		}
		return nil
	}
	return cats
}

func (s *DonationService) checkInstitution(ctx context.Context, verr *ValidationError, id uint) *domain.Institution {
	inst, err := s.Institutions.GetInstitution(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add("institutionId", "unknown institution")
		} else {
			verr.Add("institutionId", "cannot be resolved")
			logging.FromContext(ctx).Error("resolve_institution_error", "error", err)
		}
		return nil
	}
	return inst
}

func (s *DonationService) checkUser(ctx context.Context, verr *ValidationError, id uint) {
	if _, err := s.Users.GetUser(ctx, id); err != nil {
		verr.Add("userId", "unknown user")
	}
}

// Create stores a pickup request. Only admins may file one on behalf of another user.
func (s *DonationService) Create(ctx context.Context, actor Actor, req transport.DonationRequest) (*domain.Donation, error) {
	l := logging.FromContext(ctx).With("svc", "donations.create", "actor_id", actor.UserID)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	cats := s.resolveCategories(ctx, verr, req.CategoryIDs)
	s.checkInstitution(ctx, verr, req.InstitutionID)

	owner := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: cannot file a donation for another user", ErrForbidden)
		}
		owner = *req.UserID
		s.checkUser(ctx, verr, owner)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	date, _ := time.Parse(transport.DateLayout, req.Address.PickUpDate)
	d := &domain.Donation{
		Quantity:      req.Quantity,
		Categories:    cats,
		InstitutionID: req.InstitutionID,
		Address: domain.Address{
			Street:      req.Address.Street,
			City:        req.Address.City,
			ZipCode:     req.Address.ZipCode,
			PhoneNumber: req.Address.PhoneNumber,
		},
		PickUpDate:    date,
		PickUpTime:    req.Address.PickUpTime,
		PickUpComment: req.Address.PickUpComment,
		Received:      false,
		CreatedAt:     s.now().Truncate(time.Minute),
		UserID:        &owner,
	}
	if err := s.Donations.CreateDonation(ctx, d); err != nil {
		l.Error("create_donation_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicDonations, d.ID, map[string]any{
		"type":       "donation_created",
		"donationID": d.ID,
		"userID":     owner,
		"quantity":   d.Quantity,
	})
	l.Info("create_donation_success", "donation_id", d.ID)
	return s.Donations.GetDonation(ctx, d.ID)
}

func (s *DonationService) Update(ctx context.Context, id uint, req transport.DonationUpdateRequest) (*domain.Donation, error) {
	l := logging.FromContext(ctx).With("svc", "donations.update", "donation_id", id)

	d, err := s.Donations.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	required := map[string]domain.Field[string]{
		"donationAddress.street":      req.Address.Street,
		"donationAddress.city":        req.Address.City,
		"donationAddress.zipCode":     req.Address.ZipCode,
		"donationAddress.phoneNumber": req.Address.PhoneNumber,
		"donationAddress.pickUpDate":  req.Address.PickUpDate,
		"donationAddress.pickUpTime":  req.Address.PickUpTime,
	}
	for field, f := range required {
		if f.Set && f.Null {
			verr.Add(field, "must not be null")
		} else if f.Present() {
			checkVar(verr, field, f.Value, "notblank,max=255")
		}
	}
	if req.Quantity.Set && (req.Quantity.Null || req.Quantity.Value < 1) {
		verr.Add("quantity", "must be at least 1")
	}
	if req.Address.PickUpDate.Present() {
		checkVar(verr, "donationAddress.pickUpDate", req.Address.PickUpDate.Value, "datetime="+transport.DateLayout)
	}
	if req.Address.PickUpTime.Present() {
		checkVar(verr, "donationAddress.pickUpTime", req.Address.PickUpTime.Value, "datetime="+transport.TimeLayout)
	}
	if req.Address.PickUpComment.Present() {
		checkVar(verr, "donationAddress.pickUpComment", req.Address.PickUpComment.Value, "max=255")
	}
	if req.Received.Set && req.Received.Null {
		verr.Add("receive", "must not be null")
	}
	if req.InstitutionID.Set && req.InstitutionID.Null {
		verr.Add("institutionId", "must not be null")
	}

	var cats []domain.Category
	if req.CategoryIDs.Set {
		if !req.CategoryIDs.Present() || len(req.CategoryIDs.Value) == 0 {
			verr.Add("categoryIdList", "must not be empty")
		} else {
			cats = s.resolveCategories(ctx, verr, req.CategoryIDs.Value)
		}
	}
	var inst *domain.Institution
	if req.InstitutionID.Present() && req.InstitutionID.Value != d.InstitutionID {
		inst = s.checkInstitution(ctx, verr, req.InstitutionID.Value)
	}
	if req.UserID.Present() {
		s.checkUser(ctx, verr, req.UserID.Value)
	}
	if err := verr.OrNil(); err != nil {
		l.Warn("update_donation_error", "status", 400, "error", err)
		return nil, err
	}

	domain.Apply(&d.Quantity, req.Quantity)
	domain.Apply(&d.Address.Street, req.Address.Street)
	domain.Apply(&d.Address.City, req.Address.City)
	domain.Apply(&d.Address.ZipCode, req.Address.ZipCode)
	domain.Apply(&d.Address.PhoneNumber, req.Address.PhoneNumber)
	domain.Apply(&d.PickUpTime, req.Address.PickUpTime)
	domain.Apply(&d.Received, req.Received)
	if req.Address.PickUpComment.Null {
		d.PickUpComment = ""
	}
	domain.Apply(&d.PickUpComment, req.Address.PickUpComment)
	if req.Address.PickUpDate.Present() {
		date, _ := time.Parse(transport.DateLayout, req.Address.PickUpDate.Value)
		d.PickUpDate = date
	}
	if inst != nil {
		d.InstitutionID = inst.ID
		d.Institution = inst
	}
	if cats != nil {
		d.Categories = cats
	}
	if req.UserID.Null {
		d.UserID = nil
	} else if req.UserID.Present() {
		owner := req.UserID.Value
		d.UserID = &owner
	}

	if err := s.Donations.SaveDonation(ctx, d); err != nil {
		l.Error("update_donation_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicDonations, d.ID, map[string]any{
		"type":       "donation_updated",
		"donationID": d.ID,
		"received":   d.Received,
	})
	l.Info("update_donation_success")
	return d, nil
}

func (s *DonationService) Delete(ctx context.Context, id uint) (*domain.Donation, error) {
	d, err := s.Donations.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Donations.DeleteDonation(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete_donation_error", "donation_id", id, "error", err)
		return nil, err
	}
	publish(ctx, s.Events, TopicDonations, id, map[string]any{
		"type":       "donation_deleted",
		"donationID": id,
	})
	return d, nil
}
