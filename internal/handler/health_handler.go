package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pulsebook/storefront/internal/envelope"
)

// Pinger はデータベースの疎通確認インターフェース。*sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのハンドラー。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Handle はデータベースに接続できる場合に200、できない場合に503を返す。
func (h *HealthHandler) Handle(ctx context.Context, req *envelope.Request) *envelope.Response {
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			return envelope.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return envelope.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
