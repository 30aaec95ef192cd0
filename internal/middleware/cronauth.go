package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mavskr/newspipe/internal/model"
)

// CronAuth はcronエンドポイントのBearerトークン認証を行う。
// Authorization: Bearer <secret> が設定値と一致しない場合、
// 一切の処理を行わずに401を返す。比較は一定時間で行われる。
func CronAuth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("cron認証に失敗しました",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				WriteError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
