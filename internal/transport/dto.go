package transport

import "github.com/Skotchmaster/charity/internal/domain"

// Result is the envelope returned by registration, activation and recovery.
type Result struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthenticationResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}

type RegistrationRequest struct {
	Email          string `json:"email"          validate:"required,email,max=50"`
	Name           string `json:"name"           validate:"notblank,max=50"`
	LastName       string `json:"lastName"       validate:"notblank,max=50"`
	Password       string `json:"password"       validate:"required,min=6,max=72"`
	RepeatPassword string `json:"repeatPassword" validate:"required"`
}

type RegistrationEcho struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

type RegistrationResponse struct {
	Successful bool             `json:"successful"`
	Message    string           `json:"message"`
	Request    RegistrationEcho `json:"request"`
}

type TokenRequest struct {
	Token string `json:"token" query:"token" validate:"required"`
}

type ResetPasswordRequest struct {
	Token          string `json:"token"          validate:"required"`
	Password       string `json:"password"       validate:"required,min=6,max=72"`
	RepeatPassword string `json:"repeatPassword" validate:"required"`
}

type AdminPasswordRequest struct {
	Password       string `json:"password"       validate:"required,min=6,max=72"`
	RepeatPassword string `json:"repeatPassword" validate:"required"`
}

// UserUpdateRequest is a partial update; absent fields stay untouched.
type UserUpdateRequest struct {
	Email    domain.Field[string] `json:"email"`
	Name     domain.Field[string] `json:"name"`
	LastName domain.Field[string] `json:"lastName"`
	Password domain.Field[string] `json:"password"`
	Enabled  domain.Field[bool]   `json:"enabled"`
	RoleIDs  domain.Field[[]uint] `json:"roleIdList"`
}

type UserResponse struct {
	ID        uint     `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	LastName  string   `json:"lastName"`
	Enabled   bool     `json:"enabled"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"createdAccount"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

type CategoryUpdateRequest struct {
	Name domain.Field[string] `json:"name"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type InstitutionRequest struct {
	Name        string `json:"name"        validate:"notblank,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type InstitutionUpdateRequest struct {
	Name        domain.Field[string] `json:"name"`
	Description domain.Field[string] `json:"description"`
}

type InstitutionResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DonationAddress struct {
	Street        string `json:"street"        validate:"notblank,max=255"`
	City          string `json:"city"          validate:"notblank,max=255"`
	ZipCode       string `json:"zipCode"       validate:"notblank,max=10"`
	PhoneNumber   string `json:"phoneNumber"   validate:"notblank,max=20"`
	PickUpDate    string `json:"pickUpDate"    validate:"required,datetime=2006-01-02"`
	PickUpTime    string `json:"pickUpTime"    validate:"required,datetime=15:04"`
	PickUpComment string `json:"pickUpComment" validate:"max=255"`
}

type DonationRequest struct {
	Quantity      int             `json:"quantity"        validate:"min=1"`
	CategoryIDs   []uint          `json:"categoryIdList"  validate:"required,min=1"`
	InstitutionID uint            `json:"institutionId"   validate:"required"`
	Address       DonationAddress `json:"donationAddress"`
	UserID        *uint           `json:"userId"`
}

type DonationAddressUpdate struct {
	Street        domain.Field[string] `json:"street"`
	City          domain.Field[string] `json:"city"`
	ZipCode       domain.Field[string] `json:"zipCode"`
	PhoneNumber   domain.Field[string] `json:"phoneNumber"`
	PickUpDate    domain.Field[string] `json:"pickUpDate"`
	PickUpTime    domain.Field[string] `json:"pickUpTime"`
	PickUpComment domain.Field[string] `json:"pickUpComment"`
}

type DonationUpdateRequest struct {
	Quantity      domain.Field[int]     `json:"quantity"`
	CategoryIDs   domain.Field[[]uint]  `json:"categoryIdList"`
	InstitutionID domain.Field[uint]    `json:"institutionId"`
	Address       DonationAddressUpdate `json:"donationAddress"`
	Received      domain.Field[bool]    `json:"receive"`
	UserID        domain.Field[uint]    `json:"userId"`
}

type DonationResponse struct {
	ID            uint                 `json:"id"`
	Quantity      int                  `json:"quantity"`
	Categories    []CategoryResponse   `json:"categories"`
	Institution   *InstitutionResponse `json:"institution"`
	Street        string               `json:"street"`
	City          string               `json:"city"`
	ZipCode       string               `json:"zipCode"`
	PhoneNumber   string               `json:"phoneNumber"`
	PickUpDate    string               `json:"pickUpDate"`
	PickUpTime    string               `json:"pickUpTime"`
	PickUpComment string               `json:"pickUpComment"`
	Received      bool                 `json:"received"`
	CreatedAt     string               `json:"createdAt"`
	UserID        *uint                `json:"userId"`
}

type StatsResponse struct {
	Donations int64 `json:"donations"`
	Bags      int64 `json:"bags"`
}
