package dto

type TokenRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}
