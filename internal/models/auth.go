package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SchoolAccount is the administrative login owning a school.
type SchoolAccount struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// JWTClaims carries the school scope for authenticated requests.
type JWTClaims struct {
	jwt.RegisteredClaims
	SchoolID string `json:"school_id"`
	Email    string `json:"email"`
}
