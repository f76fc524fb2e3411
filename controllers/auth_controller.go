package controllers

import (
	"net/http"
	"strings"

	"blogapp/config"
	"blogapp/global"
	"blogapp/middlewares"
	"blogapp/services"

	"github.com/gin-gonic/gin"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setAuthCookie(ctx *gin.Context, token string, maxAge int) {
	secure := config.AppConfig != nil && config.AppConfig.IsProd()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.CookieName(), token, maxAge, "/", "", secure, true)
}

func issueSession(ctx *gin.Context, status int, userID, email string, body gin.H) {
	token, err := global.Tokens.Issue(userID, email)
	if err != nil {
		respondError(ctx, err)
		return
	}
	setAuthCookie(ctx, token, int(global.Tokens.TTL().Seconds()))
	body["success"] = true
	body["token"] = token
	ctx.JSON(status, body)
}

func Register(ctx *gin.Context) {
	var input services.RegisterInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := services.Register(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	issueSession(ctx, http.StatusCreated, user.ID, user.Email, gin.H{
		"message": "User registered successfully",
		"user":    user.Profile(),
	})
}

func Login(ctx *gin.Context) {
	var input loginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		fail(ctx, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := services.Authenticate(ctx.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	issueSession(ctx, http.StatusOK, user.ID, user.Email, gin.H{
		"message": "Login successful",
		"user":    user.Profile(),
	})
}

func Logout(ctx *gin.Context) {
	setAuthCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	user, err := services.GetUser(ctx.Request.Context(), id.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": user.Profile()})
}

func UpdateMe(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}
	var input services.ProfileInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := services.UpdateProfile(ctx.Request.Context(), id.UserID, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": user.Profile()})
}
