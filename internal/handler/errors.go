package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/model"
)

// errorResponse はサービス層のエラーをレスポンスに変換する。
// APIError以外のエラーは詳細をログに出力し、500を返す。
func errorResponse(err error) *envelope.Response {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeInvalidSignature {
			return envelope.Text(http.StatusBadRequest, apiErr.Message)
		}
		return envelope.Error(mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	return envelope.Error(http.StatusInternalServerError, model.NewInternalError().Message)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidInput, model.ErrCodeAlreadyPurchased, model.ErrCodeInvalidSignature:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func methodNotAllowed() *envelope.Response {
	return errorResponse(model.NewMethodNotAllowedError())
}

func invalidJSON() *envelope.Response {
	return envelope.Error(http.StatusBadRequest, "Invalid JSON body")
}

// parseID はクエリパラメータのIDを解析する。
// 未指定の場合はmissingMessage、整数でない場合は "Invalid id" の400を返す。
func parseID(raw, missingMessage string) (int64, *envelope.Response) {
	if raw == "" {
		return 0, envelope.Error(http.StatusBadRequest, missingMessage)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, envelope.Error(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}
