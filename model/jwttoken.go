package model

import "github.com/golang-jwt/jwt/v5"

// OwnerID is the subject of every token; the ledger has exactly one user.
const OwnerID = "owner"

type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
