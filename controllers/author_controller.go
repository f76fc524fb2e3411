package controllers

import (
	"net/http"

	"blogapp/services"

	"github.com/gin-gonic/gin"
)

func GetAuthors(ctx *gin.Context) {
	authors, err := services.ListAuthors(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "authors": authors})
}

// FollowAuthor toggles the caller's follow on an author.
func FollowAuthor(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	res, err := services.ToggleFollow(ctx.Request.Context(), ctx.Param("id"), id.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         res.Message,
		"followersCount":  res.Count,
		"userIsFollowing": res.Active,
	})
}
