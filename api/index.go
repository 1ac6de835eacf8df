package handler

import (
	"net/http"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/logger"
	"buildsync-backend/pkg/server"
	"buildsync-backend/pkg/utils"
)

// Handler 是Vercel函数的入口点
// 这个函数实现了"单体路由模式"，将所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	// 加载配置
	cfg, err := config.GetCached()
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Configuration error: "+err.Error())
		return
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Configuration error: "+err.Error())
		return
	}

	l := logger.New(cfg)

	// 获取数据库连接（连接池在热启动间复用，无需手动关闭）
	db, err := database.GetDatabase(r.Context(), database.DatabaseConfig{
		Driver:      cfg.DatabaseDriver,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}, l)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	// 将请求传递给Chi路由器处理
	server.NewRouter(cfg, db, l).ServeHTTP(w, r)
}
