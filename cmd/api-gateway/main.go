package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-api/api/swagger"
	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/cache"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
)

// @title School Portal API
// @version 1.0.0
// @description Scoped, filtered and paginated lists with statistics for the school portals
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()

	store, err := openStore(ctx, cfg, metrics, logr)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			logr.Warn("record store close failed", zap.Error(err))
		}
	}()
	checks := map[string]handler.Pinger{"store": store.ping}

	var cacheRepo service.CacheRepository
	if cfg.Lists.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisRepo := repository.NewCacheRepository(client)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		checks["cache"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Lists.CacheTTL, logr, cfg.Lists.CacheEnabled)
	if cacheSvc.Enabled() {
		retries := jobs.NewQueue[string]("cache-invalidate", cacheSvc.InvalidationHandler(), jobs.QueueConfig{
			Workers:    1,
			BufferSize: 64,
			MaxRetries: cfg.Lists.InvalidateRetries,
			RetryDelay: cfg.Lists.InvalidateBackoff,
			Logger:     logr,
		})
		retries.Start(ctx)
		defer retries.Stop()
		cacheSvc.UseRetryQueue(retries)
	}

	opts := service.ListOptions{
		Limits:       listquery.Limits{Default: cfg.Lists.DefaultLimit, Max: cfg.Lists.MaxLimit},
		QueryTimeout: cfg.Store.QueryTimeout,
		CacheTTL:     cfg.Lists.CacheTTL,
	}
	scopes := service.NewScopeService(store.students, logr)
	attendanceList := service.NewListService(service.AttendanceList(), store.attendanceList, scopes, cacheSvc, metrics, opts, logr)
	contentList := service.NewListService(service.ContentList(), store.contentList, scopes, cacheSvc, metrics, opts, logr)
	submissionList := service.NewListService(service.SubmissionList(), store.submissionList, scopes, cacheSvc, metrics, opts, logr)
	scheduleList := service.NewListService(service.ScheduleList(), store.scheduleList, scopes, cacheSvc, metrics, opts, logr)

	validate := validator.New()
	attendanceSvc := service.NewAttendanceService(store.attendance, store.students, attendanceList, validate, logr)
	contentSvc := service.NewContentService(store.contents, contentList, validate, logr)
	submissionSvc := service.NewSubmissionService(store.submissions, store.contents, store.students, submissionList, validate, logr)
	exportSvc := service.NewExportService(attendanceList, cfg.Export.MaxRows, logr, nil, nil)
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	listHandler := handler.NewListHandler(attendanceList, contentList, submissionList, scheduleList)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, exportSvc, attendanceList.FilterKeys())
	contentHandler := handler.NewContentHandler(contentSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	everyone := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent}
	staff := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher}
	admins := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens), middleware.WithResponseMeta())

	lists := api.Group("", middleware.RequireRoles(everyone...))
	lists.GET("/attendance", listHandler.Attendance)
	lists.GET("/attendance/export", attendanceHandler.Export)
	lists.GET("/content", listHandler.Content)
	lists.GET("/submissions", listHandler.Submissions)
	lists.GET("/schedules", listHandler.Schedules)

	api.POST("/attendance", middleware.RequireRoles(staff...), attendanceHandler.Record)
	api.POST("/content", middleware.RequireRoles(models.RoleTeacher), contentHandler.Publish)
	api.POST("/submissions", middleware.RequireRoles(models.RoleStudent), submissionHandler.Submit)
	api.PUT("/submissions/:id/grade", middleware.RequireRoles(staff...), submissionHandler.Grade)
	api.GET("/metrics/summary", middleware.RequireRoles(admins...), metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
