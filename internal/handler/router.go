package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/metrics"
	"github.com/pulsebook/storefront/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	RequestTimeout    time.Duration
	Logger            *slog.Logger
	Metrics           middleware.HTTPRecorder // nilの場合はHTTPメトリクスを記録しない
	MetricsGatherer   prometheus.Gatherer     // nilの場合は/metricsを公開しない

	// ヘルスチェック
	DB Pinger

	// 書籍・購入
	BookService     BookServiceInterface
	PurchaseService PurchaseServiceInterface
	PaymentForms    PaymentFormBuilder

	// ユーザー
	UserService UserServiceInterface

	// 音楽
	TrackService TrackServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Metrics → Logging → Recovery → CORS → SecurityHeaders → Timeout → RateLimit(General)
//
// 決済Webhookはプロバイダからの再送を妨げないためレート制限の外に配置する。
// 直接購入（POST）には購入専用のレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.RequestTimeout))
	}

	bookHandler := NewBookHandler(deps.BookService)
	purchaseHandler := NewPurchaseHandler(deps.PurchaseService, deps.PaymentForms)
	userHandler := NewUserHandler(deps.UserService)
	trackHandler := NewTrackHandler(deps.TrackService)
	healthHandler := NewHealthHandler(deps.DB)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		envelope.Write(w, envelope.Error(http.StatusNotFound, "Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		envelope.Write(w, methodNotAllowed())
	})

	// --- レート制限なし ---
	r.Handle("/health", envelope.Adapt(healthHandler.Handle))
	r.Handle("/books/yoomoney-webhook", envelope.Adapt(purchaseHandler.Webhook))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- レート制限あり ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Handle("/books", envelope.Adapt(bookHandler.Handle))
		r.Handle("/books/yoomoney-form", envelope.Adapt(purchaseHandler.PaymentForm))

		purchases := envelope.Adapt(purchaseHandler.Purchases)
		if deps.RateLimiter != nil {
			purchases = deps.RateLimiter.PurchaseMiddleware()(purchases)
		}
		r.Handle("/purchases", purchases)
		r.Handle("/books/purchases", purchases)

		r.Handle("/auth", envelope.Adapt(userHandler.Handle))

		tracks := envelope.Adapt(trackHandler.Handle)
		r.Handle("/tracks", tracks)
		r.Handle("/music", tracks)
	})

	return r
}
