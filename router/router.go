package router

import (
	"net/http"
	"time"

	"blogapp/config"
	"blogapp/controllers"
	"blogapp/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.Logger())

	origins := []string{"http://localhost:3000"}
	if config.AppConfig != nil && len(config.AppConfig.Cors.AllowOrigins) > 0 {
		origins = config.AppConfig.Cors.AllowOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.GET("/me", middlewares.AuthMiddleWare(), controllers.Me)
		auth.PUT("/me", middlewares.AuthMiddleWare(), controllers.UpdateMe)
	}

	articles := api.Group("/articles")
	{
		articles.GET("", controllers.GetArticles)
		articles.POST("", middlewares.AuthMiddleWare(), controllers.CreateArticle)
		articles.GET("/top", controllers.GetTopArticles)

		articles.GET("/:id", middlewares.ValidateID("id"), middlewares.OptionalAuth(), controllers.GetArticleByID)
		articles.GET("/:id/likes", middlewares.ValidateID("id"), controllers.GetArticleLikes)

		article := articles.Group("/:id", middlewares.AuthMiddleWare(), middlewares.ValidateID("id"))
		article.PUT("", controllers.UpdateArticle)
		article.DELETE("", controllers.DeleteArticle)
		article.POST("/like", controllers.LikeArticle)
	}

	authors := api.Group("/authors")
	{
		authors.GET("", controllers.GetAuthors)

		author := authors.Group("/:id", middlewares.AuthMiddleWare(), middlewares.ValidateID("id"))
		author.POST("/like", controllers.LikeAuthor)
		author.POST("/follow", controllers.FollowAuthor)
	}

	return r
}
