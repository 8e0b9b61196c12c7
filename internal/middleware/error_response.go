package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pulsebook/storefront/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスのフォーマット。
type ErrorResponseBody struct {
	Error string `json:"error"`
}

// WriteErrorResponse はエラーレスポンスを {"error": message} の形式で書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: apiErr.Message})
}

// WriteInternalServerError は内部サーバーエラーのレスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
