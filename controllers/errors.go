package controllers

import (
	"errors"
	"net/http"

	"blogapp/global"
	"blogapp/middlewares"
	"blogapp/services"
	"blogapp/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps an error onto the HTTP error taxonomy. Unexpected errors
// are logged and answered with a generic message.
func respondError(ctx *gin.Context, err error) {
	var domainErr *services.Error
	switch {
	case errors.Is(err, middlewares.ErrNoToken):
		fail(ctx, http.StatusUnauthorized, "No token provided")
	case errors.Is(err, utils.ErrInvalidToken):
		fail(ctx, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(ctx, http.StatusUnauthorized, "Invalid email or password")
	case errors.As(err, &domainErr):
		fail(ctx, statusOf(domainErr.Kind), domainErr.Message)
	default:
		global.Logger.WithError(err).WithField("path", ctx.Request.URL.Path).Error("unexpected error")
		fail(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func statusOf(kind error) int {
	switch kind {
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrForbidden:
		return http.StatusForbidden
	case services.ErrValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// identity returns the caller set by the auth middleware. Routes using it
// must be mounted behind AuthMiddleWare.
func identity(ctx *gin.Context) (*middlewares.Identity, bool) {
	id, ok := middlewares.CurrentIdentity(ctx)
	if !ok {
		respondError(ctx, middlewares.ErrNoToken)
	}
	return id, ok
}
