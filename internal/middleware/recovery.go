package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery はハンドラ内のpanicを回復し500を返す。
// スタックトレースはログにのみ出力し、レスポンスには含めない。
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("パニックから回復しました",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
