package middleware

import "net/http"

// NewCORSMiddleware はすべてのレスポンスにAccess-Control-Allow-Originを付与するミドルウェアを返す。
// ストアのAPIは認証Cookieを使わないためワイルドカードを許可する。
// プリフライトはエンドポイントごとに許可メソッドが異なるため各ハンドラーで応答する。
// ミドルウェアが返す429や500もブラウザから読めるようにするためにここでも付与する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Expose-Headers", "Retry-After, "+RequestIDHeader)
			next.ServeHTTP(w, r)
		})
	}
}
