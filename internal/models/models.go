package models

import (
	"time"
)

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex;not null;size:50"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"uniqueIndex;not null;size:50"`
	Name         string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Enabled      bool      `gorm:"not null;default:false"`
	Token        string    `gorm:"index"`
	Roles        []Role    `gorm:"many2many:user_roles"`
	CreatedAt    time.Time `gorm:"not null"`
}

type Token struct {
	ID           uint      `gorm:"primaryKey"`
	AccessToken  string    `gorm:"uniqueIndex;not null;size:64"`
	RefreshToken string    `gorm:"uniqueIndex;not null;size:64"`
	LoggedOut    bool      `gorm:"not null;default:false"`
	UserID       uint      `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type RecoveryPassword struct {
	ID       uint      `gorm:"primaryKey"`
	Email    string    `gorm:"index;not null;size:50"`
	Token    string    `gorm:"uniqueIndex;not null"`
	IssuedAt time.Time `gorm:"not null"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
}

type Institution struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null"`
	Description string
}

type Donation struct {
	ID            uint        `gorm:"primaryKey;autoIncrement"`
	Quantity      int         `gorm:"not null;check:quantity>0"`
	Categories    []Category  `gorm:"many2many:donation_categories"`
	InstitutionID uint        `gorm:"index;not null"`
	Institution   Institution `gorm:"foreignKey:InstitutionID"`
	Street        string      `gorm:"not null"`
	City          string      `gorm:"not null"`
	ZipCode       string      `gorm:"not null"`
	PhoneNumber   string      `gorm:"not null"`
	PickUpDate    time.Time   `gorm:"type:date;not null"`
	PickUpTime    string      `gorm:"size:5;not null"`
	PickUpComment string      `gorm:"size:255"`
	Received      bool        `gorm:"not null;default:false"`
	CreatedAt     time.Time   `gorm:"not null"`
	UserID        *uint       `gorm:"index"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&Token{},
		&RecoveryPassword{},
		&Category{},
		&Institution{},
		&Donation{},
	}
}
