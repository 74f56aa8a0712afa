package services

import (
	"errors"
	"fmt"
	"time"

	"dailyledger/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPassphrase = errors.New("invalid passphrase")

const tokenIssuer = "dailyledger"

// TokenService mints and checks the owner's access tokens.
type TokenService struct {
	secret         []byte
	passphraseHash []byte
	ttl            time.Duration
	now            func() time.Time
}

func NewTokenService(secret, passphraseHash string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret:         []byte(secret),
		passphraseHash: []byte(passphraseHash),
		ttl:            ttl,
		now:            time.Now,
	}
}

// Enabled is false when no signing secret is configured.
func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

func (s *TokenService) CheckPassphrase(passphrase string) error {
	if len(s.passphraseHash) == 0 {
		return ErrInvalidPassphrase
	}
	if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(passphrase)); err != nil {
		return ErrInvalidPassphrase
	}
	return nil
}

func (s *TokenService) CreateAccessToken() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &model.AccessClaims{
		UserID: model.OwnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   model.OwnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

func (s *TokenService) ParseAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID != model.OwnerID {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// HashPassphrase produces the bcrypt hash stored in LEDGER_PASSPHRASE_HASH.
func HashPassphrase(passphrase string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
