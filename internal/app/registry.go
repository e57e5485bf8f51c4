package app

import (
	"database/sql"
	"path/filepath"

	"github.com/AdamWu1996/YCS/internal/billing"
	"github.com/AdamWu1996/YCS/internal/importer"
	"github.com/AdamWu1996/YCS/internal/messaging/kafka"
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"
	"github.com/AdamWu1996/YCS/internal/rbac/infra"
	"github.com/AdamWu1996/YCS/internal/staff"
	"github.com/AdamWu1996/YCS/internal/task"
	"github.com/AdamWu1996/YCS/internal/timerecord"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	staffRepo := staff.NewRepository(gormDB)
	timeRecordRepo := timerecord.NewRepository(gormDB)
	taskRepo := task.NewRepository(gormDB)
	billingRepo := billing.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	staffService := staff.NewService(staffRepo)
	timeRecordService := timerecord.NewService(timeRecordRepo)
	taskService := task.NewService(taskRepo)
	billingService := billing.NewServiceWithOutbox(db, billingRepo, taskRepo, billing.MDRuleFromEnv(), outboxRepo)
	importerService := importer.NewServiceWithInfra(
		staffRepo,
		importer.NewLoader(timeRecordRepo),
		rdb,
		outboxRepo,
	)

	// --- Handlers ---
	staffHandler := staff.NewHandler(staffService)
	timeRecordHandler := timerecord.NewHandler(timeRecordService)
	taskHandler := task.NewHandler(taskService)
	billingHandler := billing.NewHandlerWithRedis(billingService, rdb)
	importerHandler := importer.NewHandler(importerService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		staff.RegisterRoutes(api, staffHandler, rbacService)
		timerecord.RegisterRoutes(api, timeRecordHandler, rbacService)
		task.RegisterRoutes(api, taskHandler, rbacService)
		billing.RegisterRoutes(api, billingHandler, rbacService, rdb)
		importer.RegisterRoutes(api, importerHandler, rbacService)
	}

	rbac.RegisterRoutes(router, rbacHandler)

	return nil
}
