package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/track"
)

func TestTrackHandler_List(t *testing.T) {
	year := 1999
	svc := &mockTrackService{
		listFn: func(ctx context.Context) ([]*model.Track, error) {
			return []*model.Track{
				{ID: 1, Title: "Кукушка", Artist: "Кино", AudioURL: "https://cdn.example.com/1.mp3", Year: &year, Price: 99},
				{ID: 2, Title: "B", Artist: "C", AudioURL: "https://cdn.example.com/2.mp3"},
			}, nil
		},
		countFn: func(ctx context.Context) (int64, error) {
			return 2, nil
		},
	}
	h := NewTrackHandler(svc)

	resp := h.Handle(context.Background(), newRequest(http.MethodGet, "", "", nil))
	assertStatus(t, resp, http.StatusOK)

	tracks := decodeBody(t, resp)["tracks"].([]any)
	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(tracks))
	}
	first := tracks[0].(map[string]any)
	if first["audioUrl"] != "https://cdn.example.com/1.mp3" || first["year"] != float64(1999) || first["price"] != float64(99) {
		t.Errorf("tracks[0] = %v", first)
	}
	if tracks[1].(map[string]any)["year"] != nil {
		t.Errorf("tracks[1].year = %v, want null", tracks[1].(map[string]any)["year"])
	}

	resp = h.Handle(context.Background(), newRequest(http.MethodGet, "stats=true", "", nil))
	assertStatus(t, resp, http.StatusOK)
	if n := decodeBody(t, resp)["tracksCount"]; n != float64(2) {
		t.Errorf("tracksCount = %v, want 2", n)
	}
}

func TestTrackHandler_Create(t *testing.T) {
	var got track.Input
	svc := &mockTrackService{
		createFn: func(ctx context.Context, in track.Input) (*model.Track, error) {
			got = in
			return &model.Track{ID: 9}, nil
		},
	}

	resp := NewTrackHandler(svc).Handle(context.Background(), newRequest(http.MethodPost, "",
		`{"title":"A","artist":"B","audioUrl":"https://cdn.example.com/a.mp3","price":150}`, nil))

	assertStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	if body["id"] != float64(9) || body["message"] != "Track created" {
		t.Errorf("body = %v", body)
	}
	if got.Title != "A" || got.AudioURL != "https://cdn.example.com/a.mp3" {
		t.Errorf("service got %+v", got)
	}
}

func TestTrackHandler_UpdateAndDelete(t *testing.T) {
	svc := &mockTrackService{
		updateFn: func(ctx context.Context, in track.Input) error {
			if in.ID == 404 {
				return model.NewNotFoundError("Track not found")
			}
			return nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			if id == 404 {
				return model.NewNotFoundError("Track not found")
			}
			return nil
		},
	}
	h := NewTrackHandler(svc)

	resp := h.Handle(context.Background(), newRequest(http.MethodPut, "", `{"id":3,"title":"A","artist":"B","audioUrl":"u"}`, nil))
	assertStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["id"] != float64(3) || body["message"] != "Track updated" {
		t.Errorf("body = %v", body)
	}

	resp = h.Handle(context.Background(), newRequest(http.MethodPut, "", `{"id":404}`, nil))
	assertStatus(t, resp, http.StatusNotFound)
	assertErrorBody(t, resp, "Track not found")

	resp = h.Handle(context.Background(), newRequest(http.MethodDelete, "id=3", "", nil))
	assertStatus(t, resp, http.StatusOK)
	if decodeBody(t, resp)["message"] != "Track deleted" {
		t.Errorf("body = %s", resp.Body)
	}

	resp = h.Handle(context.Background(), newRequest(http.MethodDelete, "", "", nil))
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorBody(t, resp, "Track ID is required")

	resp = h.Handle(context.Background(), newRequest(http.MethodDelete, "id=404", "", nil))
	assertStatus(t, resp, http.StatusNotFound)
}

func TestTrackHandler_RepositoryFailure(t *testing.T) {
	svc := &mockTrackService{
		listFn: func(ctx context.Context) ([]*model.Track, error) {
			return nil, errors.New("list tracks: connection reset")
		},
	}

	resp := NewTrackHandler(svc).Handle(context.Background(), newRequest(http.MethodGet, "", "", nil))
	assertStatus(t, resp, http.StatusInternalServerError)
	assertErrorBody(t, resp, "Internal server error")
}
