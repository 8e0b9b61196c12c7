package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pulsebook/storefront/internal/book"
	"github.com/pulsebook/storefront/internal/envelope"
	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/payment"
	"github.com/pulsebook/storefront/internal/purchase"
	"github.com/pulsebook/storefront/internal/track"
	"github.com/pulsebook/storefront/internal/user"
)

// --- モック ---

type mockBookService struct {
	getFn    func(ctx context.Context, id int64) (*model.Book, error)
	listFn   func(ctx context.Context) ([]*model.Book, error)
	createFn func(ctx context.Context, in book.Input) (*model.Book, error)
	updateFn func(ctx context.Context, in book.Input) error
	deleteFn func(ctx context.Context, id int64) error
	statsFn  func(ctx context.Context) (*model.SalesStats, error)
}

func (m *mockBookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookService) List(ctx context.Context) ([]*model.Book, error) {
	return m.listFn(ctx)
}
func (m *mockBookService) Create(ctx context.Context, in book.Input) (*model.Book, error) {
	return m.createFn(ctx, in)
}
func (m *mockBookService) Update(ctx context.Context, in book.Input) error {
	return m.updateFn(ctx, in)
}
func (m *mockBookService) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}
func (m *mockBookService) Stats(ctx context.Context) (*model.SalesStats, error) {
	return m.statsFn(ctx)
}

type mockPurchaseService struct {
	handleNotificationFn func(ctx context.Context, body string) error
	purchaseFn           func(ctx context.Context, userEmail string, req purchase.Request) (*model.Purchase, error)
	historyFn            func(ctx context.Context, userEmail string) ([]*model.PurchaseWithBook, error)
}

func (m *mockPurchaseService) HandleNotification(ctx context.Context, body string) error {
	return m.handleNotificationFn(ctx, body)
}
func (m *mockPurchaseService) Purchase(ctx context.Context, userEmail string, req purchase.Request) (*model.Purchase, error) {
	return m.purchaseFn(ctx, userEmail, req)
}
func (m *mockPurchaseService) History(ctx context.Context, userEmail string) ([]*model.PurchaseWithBook, error) {
	return m.historyFn(ctx, userEmail)
}

type mockFormBuilder struct {
	buildFn func(req payment.FormRequest) (*payment.Form, error)
}

func (m *mockFormBuilder) Build(req payment.FormRequest) (*payment.Form, error) {
	return m.buildFn(req)
}

type mockUserService struct {
	registerFn func(ctx context.Context, in user.RegisterInput) (*model.User, bool, error)
	lookupFn   func(ctx context.Context, email string) (*model.User, error)
	listFn     func(ctx context.Context) ([]*model.User, error)
	countFn    func(ctx context.Context) (int64, error)
}

func (m *mockUserService) Register(ctx context.Context, in user.RegisterInput) (*model.User, bool, error) {
	return m.registerFn(ctx, in)
}
func (m *mockUserService) Lookup(ctx context.Context, email string) (*model.User, error) {
	return m.lookupFn(ctx, email)
}
func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	return m.listFn(ctx)
}
func (m *mockUserService) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

type mockTrackService struct {
	listFn   func(ctx context.Context) ([]*model.Track, error)
	countFn  func(ctx context.Context) (int64, error)
	createFn func(ctx context.Context, in track.Input) (*model.Track, error)
	updateFn func(ctx context.Context, in track.Input) error
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockTrackService) List(ctx context.Context) ([]*model.Track, error) {
	return m.listFn(ctx)
}
func (m *mockTrackService) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}
func (m *mockTrackService) Create(ctx context.Context, in track.Input) (*model.Track, error) {
	return m.createFn(ctx, in)
}
func (m *mockTrackService) Update(ctx context.Context, in track.Input) error {
	return m.updateFn(ctx, in)
}
func (m *mockTrackService) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

// --- ヘルパー ---

func newRequest(method, query, body string, headers map[string]string) *envelope.Request {
	req := &envelope.Request{
		Method:  method,
		Headers: map[string]string{},
		Query:   map[string]string{},
		Body:    body,
	}
	for k, v := range headers {
		req.Headers[k] = v
	}
	if query != "" {
		for _, pair := range strings.Split(query, "&") {
			k, v, _ := strings.Cut(pair, "=")
			req.Query[k] = v
		}
	}
	return req
}

func decodeBody(t *testing.T, resp *envelope.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", resp.Body, err)
	}
	return body
}

func assertStatus(t *testing.T, resp *envelope.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, resp.Body)
	}
}

func assertErrorBody(t *testing.T, resp *envelope.Response, want string) {
	t.Helper()
	if got := decodeBody(t, resp)["error"]; got != want {
		t.Errorf("error = %v, want %q", got, want)
	}
}

func doHTTP(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}
