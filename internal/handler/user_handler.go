package handler

import (
	"context"
	"net/http"

	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Register(ctx context.Context, in user.RegisterInput) (*model.User, bool, error)
	Lookup(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
}

// UserHandler はユーザー登録と参照のハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Handle は /auth へのリクエストを処理する。
//
//	GET  /auth?stats=true  ユーザー数
//	GET  /auth?all=true    ユーザー一覧
//	GET  /auth?email=      ユーザー参照
//	POST /auth             ユーザー登録（既存の場合は200）
func (h *UserHandler) Handle(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight("GET, POST, OPTIONS", "Content-Type")
	case http.MethodGet:
		switch {
		case req.QueryParam("stats") == "true":
			return h.count(ctx)
		case req.QueryParam("all") == "true":
			return h.list(ctx)
		default:
			return h.lookup(ctx, req.QueryParam("email"))
		}
	case http.MethodPost:
		return h.register(ctx, req)
	default:
		return methodNotAllowed()
	}
}

func (h *UserHandler) count(ctx context.Context) *envelope.Response {
	n, err := h.service.Count(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, map[string]int64{"usersCount": n})
}

func (h *UserHandler) list(ctx context.Context) *envelope.Response {
	users, err := h.service.List(ctx)
	if err != nil {
		return errorResponse(err)
	}

	results := make([]userResponse, len(users))
	for i, u := range users {
		results[i] = toUserResponse(u)
	}
	return envelope.JSON(http.StatusOK, map[string][]userResponse{"users": results})
}

func (h *UserHandler) lookup(ctx context.Context, email string) *envelope.Response {
	u, err := h.service.Lookup(ctx, email)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, map[string]userResponse{"user": toUserResponse(u)})
}

type registerResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

func (h *UserHandler) register(ctx context.Context, req *envelope.Request) *envelope.Response {
	var in user.RegisterInput
	if err := req.DecodeJSON(&in); err != nil {
		return invalidJSON()
	}

	u, created, err := h.service.Register(ctx, in)
	if err != nil {
		return errorResponse(err)
	}

	if !created {
		return envelope.JSON(http.StatusOK, registerResponse{User: toUserResponse(u), Message: "User already exists"})
	}
	return envelope.JSON(http.StatusCreated, registerResponse{User: toUserResponse(u), Message: "User created"})
}
