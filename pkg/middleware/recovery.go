package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"buildsync-backend/pkg/utils"

	"github.com/charmbracelet/log"
)

// Recovery 恢复中间件，panic 转为 500 {message, stack}
func Recovery(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := string(debug.Stack())
				logger.Error("panic", "path", r.URL.Path, "err", rec, "stack", stack)
				utils.WriteJSONResponse(w, http.StatusInternalServerError, utils.ErrorBody{
					Message: fmt.Sprintf("internal server error: %v", rec),
					Stack:   stack,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
