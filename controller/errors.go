// Package controller holds the HTTP handlers; this file maps domain errors
// to responses shared by every handler package.
package controller

import (
	"errors"
	"net/http"

	"dailyledger/model"
	"dailyledger/services"
	"dailyledger/storage"

	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyTaskName),
		errors.Is(err, model.ErrDuplicateTask),
		errors.Is(err, model.ErrTaskLimit),
		errors.Is(err, model.ErrTaskFloor),
		errors.Is(err, model.ErrInvalidRecord),
		errors.Is(err, services.ErrNothingCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSealed),
		errors.Is(err, services.ErrEditing),
		errors.Is(err, services.ErrNotEditing),
		errors.Is(err, storage.ErrDuplicateDate),
		errors.Is(err, storage.ErrSchemaVersion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError aborts the request with a user-facing message. Internal
// failures keep their detail out of the body.
func WriteError(c *gin.Context, err error) {
	status := StatusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": "Failed to save to ledger."})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
