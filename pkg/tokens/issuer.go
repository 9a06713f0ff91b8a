package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// Pair is a freshly signed access/refresh couple.
type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) CreateAccessToken(userID uint, email string, roles []string, exp time.Time) (string, error) {
	claims := AccessClaims{
		UserID: userID,
		Roles:  roles,
		Type:   TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
}

func (i *Issuer) CreateRefreshToken(userID uint, email string, exp time.Time) (string, error) {
	claims := RefreshClaims{
		UserID: userID,
		Type:   TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
}

func (i *Issuer) Issue(userID uint, email string, roles []string) (*Pair, error) {
	now := i.now()
	accessExp := now.Add(i.AccessTTL)
	refreshExp := now.Add(i.RefreshTTL)

	access, err := i.CreateAccessToken(userID, email, roles, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := i.CreateRefreshToken(userID, email, refreshExp)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}
