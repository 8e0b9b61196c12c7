package handler

import (
	"context"
	"net/http"

	"github.com/pulsebook/storefront/internal/book"
	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/model"
)

const (
	bookMethods = "GET, POST, PUT, DELETE, OPTIONS"
	bookHeaders = "Content-Type, X-User-Email"
)

// BookServiceInterface は書籍ハンドラーが必要とするサービスインターフェース。
type BookServiceInterface interface {
	Get(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]*model.Book, error)
	Create(ctx context.Context, in book.Input) (*model.Book, error)
	Update(ctx context.Context, in book.Input) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*model.SalesStats, error)
}

// BookHandler は書籍カタログのハンドラー。
type BookHandler struct {
	service BookServiceInterface
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service BookServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

// Handle は /books へのリクエストをメソッドごとに処理する。
//
//	GET    /books?stats=true  売上統計
//	GET    /books?id=N        書籍詳細
//	GET    /books             書籍一覧
//	POST   /books             書籍登録
//	PUT    /books             書籍更新（ボディのidで指定）
//	DELETE /books?id=N        書籍削除
func (h *BookHandler) Handle(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight(bookMethods, bookHeaders)
	case http.MethodGet:
		if req.QueryParam("stats") == "true" {
			return h.stats(ctx)
		}
		if req.QueryParam("id") != "" {
			return h.get(ctx, req)
		}
		return h.list(ctx)
	case http.MethodPost:
		return h.create(ctx, req)
	case http.MethodPut:
		return h.update(ctx, req)
	case http.MethodDelete:
		return h.delete(ctx, req)
	default:
		return methodNotAllowed()
	}
}

func (h *BookHandler) stats(ctx context.Context) *envelope.Response {
	stats, err := h.service.Stats(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, toStatsResponse(stats))
}

func (h *BookHandler) get(ctx context.Context, req *envelope.Request) *envelope.Response {
	id, errResp := parseID(req.QueryParam("id"), "Book ID required")
	if errResp != nil {
		return errResp
	}

	b, err := h.service.Get(ctx, id)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, map[string]bookResponse{"book": toBookResponse(b)})
}

func (h *BookHandler) list(ctx context.Context) *envelope.Response {
	books, err := h.service.List(ctx)
	if err != nil {
		return errorResponse(err)
	}

	results := make([]bookResponse, len(books))
	for i, b := range books {
		results[i] = toBookResponse(b)
	}
	return envelope.JSON(http.StatusOK, map[string][]bookResponse{"books": results})
}

func (h *BookHandler) create(ctx context.Context, req *envelope.Request) *envelope.Response {
	var in book.Input
	if err := req.DecodeJSON(&in); err != nil {
		return invalidJSON()
	}

	b, err := h.service.Create(ctx, in)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusCreated, messageResponse{ID: b.ID, Message: "Book created"})
}

func (h *BookHandler) update(ctx context.Context, req *envelope.Request) *envelope.Response {
	var in book.Input
	if err := req.DecodeJSON(&in); err != nil {
		return invalidJSON()
	}

	if err := h.service.Update(ctx, in); err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, messageResponse{Message: "Book updated"})
}

func (h *BookHandler) delete(ctx context.Context, req *envelope.Request) *envelope.Response {
	id, errResp := parseID(req.QueryParam("id"), "Book ID required")
	if errResp != nil {
		return errResp
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, messageResponse{Message: "Book deleted"})
}
