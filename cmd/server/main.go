package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/app"
	"github.com/coursehub/coursehub/internal/client/email"
	"github.com/coursehub/coursehub/internal/client/paypal"
	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/controller"
	"github.com/coursehub/coursehub/internal/database"
	"github.com/coursehub/coursehub/internal/repository"
	"github.com/coursehub/coursehub/internal/service"
)

// ratingInterval is how often the vote average is folded back into the
// course rows.
const ratingInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting coursehub",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := app.ConnectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	accessor := database.NewAccessor(pool, logger)

	courseRepo := repository.NewCourseRepository(accessor, logger)
	lessonRepo := repository.NewLessonRepository(accessor, logger)
	subscriptionRepo := repository.NewSubscriptionRepository(accessor, logger)

	mailer := email.NewSendGrid(cfg.Email, logger)
	gateway := paypal.New(cfg.Paypal, logger)
	covers := service.NewImagePersister(cfg.Images, logger)

	courseService := service.NewCourseService(
		courseRepo, lessonRepo, subscriptionRepo, covers, gateway, mailer, cfg.Courses, logger)
	lessonService := service.NewLessonService(lessonRepo, courseRepo, logger)

	cachedCourses := service.NewCachedCourseService(courseService, cfg.Courses, cfg.CacheTTL)
	cachedLessons := service.NewCachedLessonService(lessonService, cfg.CacheTTL)

	courseCtl := controller.NewCourseController(cachedCourses, logger)
	lessonCtl := controller.NewLessonController(cachedLessons, cachedCourses, logger)

	scheduler := app.NewScheduler(courseRepo, ratingInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := controller.NewRouter(cfg, courseCtl, lessonCtl)

	go func() {
		if err := router.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	if err := router.Shutdown(); err != nil {
		logger.Error("Failed to shut down server", zap.Error(err))
	}
}
