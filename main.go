package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/config"
	"github.com/sachiny0106/LinkUp/database"
	"github.com/sachiny0106/LinkUp/media"
	"github.com/sachiny0106/LinkUp/routes"
	"github.com/sachiny0106/LinkUp/store"
	"github.com/sachiny0106/LinkUp/store/memstore"
	"github.com/sachiny0106/LinkUp/store/mongodb"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		posts store.PostStore
		users store.UserStore
	)

	switch cfg.Storage {
	case "memory":
		logger.Warn("using in-memory storage; data will not survive a restart")
		posts = memstore.NewPostStore()
		users = memstore.NewUserStore()
	default:
		db, err := connectWithRetry(logger, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := database.Disconnect(); err != nil {
				logger.Error("mongo disconnect failed", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			cancel()
			logger.Fatal("failed to create indexes", zap.Error(err))
		}
		cancel()

		st := mongodb.New(db)
		posts = st.Posts
		users = st.Users
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	}

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			logger.Fatal("invalid Cloudinary configuration", zap.Error(err))
		}
		uploader = cld
	} else {
		logger.Warn("CLOUDINARY_URL not set; upload endpoints disabled")
	}

	router := routes.Setup(routes.Deps{
		Posts:        posts,
		Users:        users,
		Uploader:     uploader,
		Logger:       logger,
		JWTSecret:    cfg.JWTSecret,
		ShareBaseURL: cfg.ShareBaseURL,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func connectWithRetry(logger *zap.Logger, uri, name string) (*mongo.Database, error) {
	var (
		db  *mongo.Database
		err error
	)
	for i := 1; i <= 3; i++ {
		db, err = database.Connect(uri, name)
		if err == nil {
			return db, nil
		}
		logger.Warn("MongoDB connection attempt failed",
			zap.Int("attempt", i), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	return nil, err
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
