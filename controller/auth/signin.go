package auth

import (
	"net/http"

	"dailyledger/dto"
	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

func TokenController(router *gin.Engine, tokens *services.TokenService) {
	router.POST("/auth/token", func(c *gin.Context) {
		IssueToken(c, tokens)
	})
}

// IssueToken trades the owner's passphrase for an access token.
func IssueToken(c *gin.Context, tokens *services.TokenService) {
	if !tokens.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Authentication is disabled"})
		return
	}

	var request dto.TokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passphrase is required"})
		return
	}

	if err := tokens.CheckPassphrase(request.Passphrase); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid passphrase"})
		return
	}

	accessToken, expiresAt, err := tokens.CreateAccessToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.Unix(),
	})
}
