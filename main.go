package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapp/config"
	"blogapp/global"
	"blogapp/router"
	"blogapp/services"

	"github.com/gin-gonic/gin"
)

func main() {
	config.InitConfig()
	defer config.Close()

	if config.AppConfig.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	if global.RabbitChannel != nil {
		services.Events = &services.AMQPPublisher{Channel: global.RabbitChannel, Queue: config.QueueName()}
	}

	port := config.AppConfig.App.Port
	if port == "" {
		port = ":3000"
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           router.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		global.Logger.WithField("addr", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			global.Logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	global.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		global.Logger.WithError(err).Error("forced shutdown")
	}
}
