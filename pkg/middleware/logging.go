package middleware

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs every request with charm log and places a request
// scoped logger in the context for handlers to pick up with log.FromContext.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With("req", middleware.GetReqID(r.Context()))
			if claims, ok := GetClaimsFromContext(r.Context()); ok {
				reqLogger = reqLogger.With("user", claims.Email)
			}
			r = r.WithContext(log.WithContext(r.Context(), reqLogger))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", humanize.Bytes(uint64(ww.BytesWritten())),
				"duration", time.Since(start),
				"ip", getClientIP(r),
			}
			switch {
			case status >= http.StatusInternalServerError:
				reqLogger.Error("request", fields...)
			case status >= http.StatusBadRequest:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

// getClientIP 获取客户端IP地址
func getClientIP(r *http.Request) string {
	// 检查X-Forwarded-For头（代理/负载均衡器）
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
