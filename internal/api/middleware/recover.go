package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
)

// Recover перехватывает панику обработчика и отвечает 500
func Recover(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("%s %s - panic: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					handlers.RespondInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog пишет строку лога на каждый запрос
func AccessLog(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}
