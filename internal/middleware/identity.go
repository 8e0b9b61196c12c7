// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserEmailHeader はクライアントが利用者を名乗るためのヘッダー。
// パスワード認証は行わず、購入履歴と直接購入の紐付けにのみ使う。
const UserEmailHeader = "X-User-Email"

// RequestIDHeader はリクエストIDを受け渡すヘッダー。
const RequestIDHeader = "X-Request-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var requestIDContextKey = contextKey("request_id")

// NewRequestIDMiddleware はリクエストごとにIDを採番し、コンテキストとレスポンスヘッダーに設定する。
// クライアントがX-Request-IDを送ってきた場合はその値を引き継ぐ。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はコンテキストからリクエストIDを取得する。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// UserEmail はリクエストが名乗る利用者のemailを返す。未指定の場合は空文字列。
func UserEmail(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserEmailHeader))
}

// ClientKey はレート制限のキーを返す。
// X-User-Emailがあればそれを、なければリモートIPを使う。
func ClientKey(r *http.Request) string {
	if email := UserEmail(r); email != "" {
		return "email:" + strings.ToLower(email)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
