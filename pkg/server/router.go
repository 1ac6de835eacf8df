// Package server assembles the chi router: middleware chain, the /api routes
// and the operational endpoints.
package server

import (
	"fmt"
	"net/http"
	"time"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/handlers"
	customMiddleware "buildsync-backend/pkg/middleware"
	"buildsync-backend/pkg/utils"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestTimeout leaves headroom below the serverless function limit.
const requestTimeout = 25 * time.Second

// NewRouter 创建路由器
// 单体路由模式：所有API端点集中在一个Chi路由器中管理
func NewRouter(cfg *config.Config, db database.DatabaseInterface, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	router := chi.NewRouter()
	setupMiddleware(router, cfg, logger)
	setupRoutes(router, cfg, db)
	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *log.Logger) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.Normalize())
	// claims first so the request log can name the user
	router.Use(customMiddleware.OptionalAuth(utils.NewJWTService(cfg.JWTSecret)))
	router.Use(customMiddleware.RequestLogger(logger))
	router.Use(customMiddleware.Recovery(logger))
	if cfg.MetricsEnabled {
		router.Use(customMiddleware.Metrics)
	}

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))
	router.Use(customMiddleware.NoCache)
	router.Use(customMiddleware.MaxBodySize(cfg.MaxBodyBytes))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(requestTimeout))

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	// 创建处理器
	authHandler := handlers.NewAuthHandler(cfg, db)
	dataHandler := handlers.NewDataHandler(cfg, db)
	projectsHandler := handlers.NewProjectsHandler(cfg, db)
	tasksHandler := handlers.NewTasksHandler(cfg, db)
	invoicesHandler := handlers.NewInvoicesHandler(cfg, db)
	scheduleHandler := handlers.NewScheduleHandler(cfg, db)
	usersHandler := handlers.NewUsersHandler(cfg, db)

	// 健康检查端点
	router.Get("/", authHandler.HealthCheck)

	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
		router.Get("/debug/db-schema", func(w http.ResponseWriter, r *http.Request) {
			missing, err := db.VerifyTables(r.Context())
			if err != nil {
				utils.WriteError(w, r, err, cfg.Debug)
				return
			}
			utils.WriteSuccessResponse(w, map[string]any{
				"ok":      len(missing) == 0,
				"missing": missing,
			})
		})
	}

	// API路由组
	router.Route("/api", func(r chi.Router) {
		// 认证
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.RefreshToken)

		// 全量快照
		r.Get("/data", dataHandler.GetData)

		// 项目
		r.Post("/project", projectsHandler.CreateProject)
		r.Post("/project/update", projectsHandler.UpdateProject)
		r.Delete("/project", projectsHandler.DeleteProject)
		r.Post("/project/update-post", projectsHandler.AddProjectUpdate)
		r.Put("/project/update", projectsHandler.EditProjectUpdate)
		r.Delete("/project/update", projectsHandler.DeleteProjectUpdate)

		// 任务
		r.Post("/task", tasksHandler.CreateTask)
		r.Post("/task/update", tasksHandler.UpdateTask)
		r.Post("/task/status", tasksHandler.SetTaskStatus)
		r.Post("/task/complete", tasksHandler.CompleteTask)
		r.Post("/task/uncomplete", tasksHandler.UncompleteTask)
		r.Delete("/task", tasksHandler.DeleteTask)
		r.Post("/task/comment", tasksHandler.AddComment)
		r.Delete("/task/comment", tasksHandler.DeleteComment)

		// 发票
		r.Post("/invoice", invoicesHandler.CreateInvoice)
		r.Post("/invoice/update", invoicesHandler.UpdateInvoice)
		r.Delete("/invoice", invoicesHandler.DeleteInvoice)

		// 日程
		r.Post("/meeting", scheduleHandler.CreateMeeting)
		r.Post("/meeting/update", scheduleHandler.UpdateMeeting)
		r.Post("/meeting/complete", scheduleHandler.CompleteMeeting)
		r.Delete("/meeting", scheduleHandler.DeleteMeeting)
		r.Post("/reminder", scheduleHandler.CreateReminder)
		r.Post("/reminder/update", scheduleHandler.UpdateReminder)
		r.Delete("/reminder", scheduleHandler.DeleteReminder)
		r.Post("/other-matter", scheduleHandler.CreateOtherMatter)
		r.Put("/other-matter", scheduleHandler.UpdateOtherMatter)
		r.Delete("/other-matter", scheduleHandler.DeleteOtherMatter)

		// 用户
		r.Post("/user/update", usersHandler.UpdateUser)
		r.Post("/notification/read", usersHandler.MarkNotificationRead)
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
