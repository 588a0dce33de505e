package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUser(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetPasswordForEmail(email string) (passwordHash string, userID int64, err error)
	GetUserByID(userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string, role Role) (token string, err error)
	GenerateRefreshToken(userID int64, email string, role Role) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// Role is the single authority model of the system. There is no separate
// permission table: every access decision branches on one of these four values.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleOperationalHead Role = "operational_head"
	RoleDeveloper       Role = "developer"
	RoleClient          Role = "client"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperationalHead, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// IsStaff reports whether the role sees every project in the system.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOperationalHead
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	ClientID *int64 `json:"client_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
)
