// Package domain holds the storage-independent entities of the donation service.
package domain

import (
	"errors"
	"time"
)

const (
	RoleUser       = "ROLE_USER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"

	// VerifiedToken replaces a user's verification token once the account is activated.
	VerifiedToken = "verified"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Role struct {
	ID   uint
	Name string
}

type User struct {
	ID           uint
	Email        string
	Name         string
	LastName     string
	PasswordHash string
	Enabled      bool
	Roles        []Role
	Token        string
	CreatedAt    time.Time
}

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Token is one issued access/refresh pair. Only fingerprints are stored.
type Token struct {
	ID           uint
	AccessToken  string
	RefreshToken string
	LoggedOut    bool
	UserID       uint
	CreatedAt    time.Time
}

type RecoveryPassword struct {
	ID       uint
	Email    string
	Token    string
	IssuedAt time.Time
}

type Category struct {
	ID   uint
	Name string
}

type Institution struct {
	ID          uint
	Name        string
	Description string
}

type Address struct {
	Street      string
	City        string
	ZipCode     string
	PhoneNumber string
}

type Donation struct {
	ID            uint
	Quantity      int
	Categories    []Category
	InstitutionID uint
	Institution   *Institution
	Address       Address
	PickUpDate    time.Time
	PickUpTime    string
	PickUpComment string
	Received      bool
	CreatedAt     time.Time
	UserID        *uint
}

func (d *Donation) CategoryIDs() []uint {
	out := make([]uint, 0, len(d.Categories))
	for _, c := range d.Categories {
		out = append(out, c.ID)
	}
	return out
}

// DonationStats feeds the public counters.
type DonationStats struct {
	Donations int64
	Bags      int64
}
