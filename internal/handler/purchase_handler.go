package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/middleware"
	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/payment"
	"github.com/pulsebook/storefront/internal/purchase"
)

const (
	purchaseMethods = "GET, POST, OPTIONS"
	purchaseHeaders = "Content-Type, X-User-Email"
)

// PurchaseServiceInterface は購入ハンドラーが必要とするサービスインターフェース。
type PurchaseServiceInterface interface {
	// HandleNotification はYooMoneyの通知ボディを検証して購入を記録する。
	HandleNotification(ctx context.Context, body string) error
	// Purchase は直接購入を記録する。
	Purchase(ctx context.Context, userEmail string, req purchase.Request) (*model.Purchase, error)
	// History はユーザーの購入履歴を返す。
	History(ctx context.Context, userEmail string) ([]*model.PurchaseWithBook, error)
}

// PaymentFormBuilder は決済フォームのパラメータ生成インターフェース。
type PaymentFormBuilder interface {
	Build(req payment.FormRequest) (*payment.Form, error)
}

// PurchaseHandler は購入と決済のハンドラー。
type PurchaseHandler struct {
	service PurchaseServiceInterface
	forms   PaymentFormBuilder
}

// NewPurchaseHandler はPurchaseHandlerを生成する。
func NewPurchaseHandler(service PurchaseServiceInterface, forms PaymentFormBuilder) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
		forms:   forms,
	}
}

// purchaseRequest は直接購入リクエストのボディ。
type purchaseRequest struct {
	BookID       int64           `json:"bookId"`
	PurchaseType string          `json:"purchaseType"`
	Price        decimal.Decimal `json:"price"`
}

// Purchases は /purchases と /books/purchases へのリクエストを処理する。
// 利用者はX-User-Emailヘッダーで指定する。
//
//	GET  購入履歴
//	POST 直接購入
func (h *PurchaseHandler) Purchases(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight(purchaseMethods, purchaseHeaders)
	case http.MethodGet:
		return h.history(ctx, req)
	case http.MethodPost:
		return h.create(ctx, req)
	default:
		return methodNotAllowed()
	}
}

func (h *PurchaseHandler) history(ctx context.Context, req *envelope.Request) *envelope.Response {
	purchases, err := h.service.History(ctx, req.Header(middleware.UserEmailHeader))
	if err != nil {
		return errorResponse(err)
	}

	results := make([]purchaseResponse, len(purchases))
	for i, p := range purchases {
		results[i] = toPurchaseResponse(p)
	}
	return envelope.JSON(http.StatusOK, map[string][]purchaseResponse{"purchases": results})
}

func (h *PurchaseHandler) create(ctx context.Context, req *envelope.Request) *envelope.Response {
	email := req.Header(middleware.UserEmailHeader)
	if email == "" {
		return envelope.Error(http.StatusBadRequest, "User email required")
	}

	var body purchaseRequest
	if err := req.DecodeJSON(&body); err != nil {
		return invalidJSON()
	}

	p, err := h.service.Purchase(ctx, email, purchase.Request{
		BookID:       body.BookID,
		PurchaseType: body.PurchaseType,
		Price:        body.Price,
	})
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusCreated, messageResponse{ID: p.ID, Message: "Purchase created"})
}

// Webhook はYooMoneyのHTTP通知を受け付ける。
// POST /books/yoomoney-webhook
// 署名が不正な場合は400 "Invalid signature"、それ以外は200 "OK"をtext/plainで返す。
func (h *PurchaseHandler) Webhook(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight("POST, OPTIONS", "Content-Type")
	case http.MethodPost:
	default:
		return methodNotAllowed()
	}

	if err := h.service.HandleNotification(ctx, req.Body); err != nil {
		return errorResponse(err)
	}
	return envelope.Text(http.StatusOK, "OK")
}

// PaymentForm はYooMoneyの決済フォームに渡すパラメータを返す。
// GET /books/yoomoney-form?bookId=&userEmail=&purchaseType=&amount=
func (h *PurchaseHandler) PaymentForm(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight("GET, OPTIONS", "Content-Type")
	case http.MethodGet:
	default:
		return methodNotAllowed()
	}

	form, err := h.forms.Build(payment.FormRequest{
		BookID:       req.QueryParam("bookId"),
		UserEmail:    req.QueryParam("userEmail"),
		PurchaseType: req.QueryParam("purchaseType"),
		Amount:       req.QueryParam("amount"),
	})
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, form)
}
