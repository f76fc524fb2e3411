package controllers

import (
	"net/http"
	"strconv"

	"blogapp/global"
	"blogapp/services"

	"github.com/gin-gonic/gin"
)

// LikeArticle toggles the caller's like on an article. The count lives in the
// database; Redis mirrors it for GetArticleLikes and GetTopArticles.
func LikeArticle(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	res, err := services.ToggleArticleLike(ctx.Request.Context(), ctx.Param("id"), id.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"likes":   res.Count,
		"likedBy": res.Members,
	})
}

// LikeAuthor toggles the caller's like on an author.
func LikeAuthor(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	res, err := services.ToggleAuthorLike(ctx.Request.Context(), ctx.Param("id"), id.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"likes":   res.Count,
		"likedBy": res.Members,
	})
}

// GetArticleLikes returns the like count of one article.
func GetArticleLikes(ctx *gin.Context) {
	likes, err := services.ArticleLikes(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "likes": likes})
}

// GetTopArticles returns the top N of the like ranking, with titles.
func GetTopArticles(ctx *gin.Context) {
	top, err := strconv.Atoi(ctx.DefaultQuery("top", "10"))
	if err != nil || top <= 0 || top > 100 {
		top = 10
	}

	list, err := services.TopArticles(top)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	titles, err := services.ArticleTitles(ctx.Request.Context(), ids)
	if err != nil {
		global.Logger.WithError(err).Warn("top articles without titles")
	}
	for i := range list {
		list[i].Title = titles[list[i].ID]
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "list": list})
}
