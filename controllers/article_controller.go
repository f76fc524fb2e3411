package controllers

import (
	"net/http"
	"strconv"

	"blogapp/middlewares"
	"blogapp/services"

	"github.com/gin-gonic/gin"
)

func CreateArticle(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	var input services.ArticleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	author, err := services.GetUser(ctx.Request.Context(), id.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	article, err := services.CreateArticle(ctx.Request.Context(), author, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      article.ID,
		"message": "Article created successfully",
	})
}

func GetArticles(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	articles, pagination, err := services.ListArticles(ctx.Request.Context(), services.ArticleQuery{
		Page:     page,
		Limit:    limit,
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "articles": articles, "pagination": pagination})
}

func GetArticleByID(ctx *gin.Context) {
	article, err := services.ViewArticle(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	likedByMe := false
	if id, ok := middlewares.CurrentIdentity(ctx); ok {
		for _, userID := range article.LikedBy {
			if userID == id.UserID {
				likedByMe = true
				break
			}
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "article": article, "likedByMe": likedByMe})
}

func UpdateArticle(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	var input services.ArticleUpdate
	if err := ctx.ShouldBindJSON(&input); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := services.UpdateArticle(ctx.Request.Context(), ctx.Param("id"), id.UserID, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Article updated successfully", "article": article})
}

func DeleteArticle(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	if err := services.DeleteArticle(ctx.Request.Context(), ctx.Param("id"), id.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Article deleted successfully"})
}
