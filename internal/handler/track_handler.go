package handler

import (
	"context"
	"net/http"

	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/track"
)

// TrackServiceInterface はトラックハンドラーが必要とするサービスインターフェース。
type TrackServiceInterface interface {
	List(ctx context.Context) ([]*model.Track, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, in track.Input) (*model.Track, error)
	Update(ctx context.Context, in track.Input) error
	Delete(ctx context.Context, id int64) error
}

// TrackHandler は音楽トラックのハンドラー。/tracks と /music で共有する。
type TrackHandler struct {
	service TrackServiceInterface
}

// NewTrackHandler はTrackHandlerを生成する。
func NewTrackHandler(service TrackServiceInterface) *TrackHandler {
	return &TrackHandler{service: service}
}

// Handle はトラックへのリクエストを処理する。
func (h *TrackHandler) Handle(ctx context.Context, req *envelope.Request) *envelope.Response {
	switch req.Method {
	case http.MethodOptions:
		return envelope.Preflight("GET, POST, PUT, DELETE, OPTIONS", "Content-Type")
	case http.MethodGet:
		if req.QueryParam("stats") == "true" {
			return h.count(ctx)
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

func (h *TrackHandler) count(ctx context.Context) *envelope.Response {
	n, err := h.service.Count(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, map[string]int64{"tracksCount": n})
}

func (h *TrackHandler) list(ctx context.Context) *envelope.Response {
	tracks, err := h.service.List(ctx)
	if err != nil {
		return errorResponse(err)
	}

	results := make([]trackResponse, len(tracks))
	for i, t := range tracks {
		results[i] = toTrackResponse(t)
	}
	return envelope.JSON(http.StatusOK, map[string][]trackResponse{"tracks": results})
}

func (h *TrackHandler) create(ctx context.Context, req *envelope.Request) *envelope.Response {
	var in track.Input
	if err := req.DecodeJSON(&in); err != nil {
		return invalidJSON()
	}

	t, err := h.service.Create(ctx, in)
	if err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusCreated, messageResponse{ID: t.ID, Message: "Track created"})
}

func (h *TrackHandler) update(ctx context.Context, req *envelope.Request) *envelope.Response {
	var in track.Input
	if err := req.DecodeJSON(&in); err != nil {
		return invalidJSON()
	}

	if err := h.service.Update(ctx, in); err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, messageResponse{ID: in.ID, Message: "Track updated"})
}

func (h *TrackHandler) delete(ctx context.Context, req *envelope.Request) *envelope.Response {
	id, errResp := parseID(req.QueryParam("id"), "Track ID is required")
	if errResp != nil {
		return errResp
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return errorResponse(err)
	}
	return envelope.JSON(http.StatusOK, messageResponse{Message: "Track deleted"})
}
