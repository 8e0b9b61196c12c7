// Package envelope はハンドラが受け取るリクエストと返すレスポンスの共通形式を提供する。
// ハンドラはnet/httpに依存せずEnvelopeだけを扱い、Adaptでhttp.Handlerに変換される。
package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// MaxBodyBytes はリクエストボディの上限サイズ。
const MaxBodyBytes = 1 << 20

// PreflightMaxAge はCORSプリフライト結果のキャッシュ秒数。
const PreflightMaxAge = "86400"

// ErrBodyTooLarge はボディがMaxBodyBytesを超えた場合に返される。
var ErrBodyTooLarge = errors.New("request body too large")

// Request は正規化された受信リクエスト。
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    string
}

// Header は名前の大文字小文字を区別せずにヘッダー値を返す。
func (r *Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// QueryParam はクエリパラメータの値を返す。存在しない場合は空文字。
func (r *Request) QueryParam(name string) string {
	return r.Query[name]
}

// DecodeJSON はボディをJSONとしてvにデコードする。
// 空のボディは空オブジェクトとして扱う。
func (r *Request) DecodeJSON(v any) error {
	body := strings.TrimSpace(r.Body)
	if body == "" {
		body = "{}"
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode json body: %w", err)
	}
	return nil
}

// Response は送信レスポンス。
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

func baseHeaders(contentType string) map[string]string {
	return map[string]string{
		"Content-Type":                contentType,
		"Access-Control-Allow-Origin": "*",
	}
}

// JSON はvをJSONにエンコードしたレスポンスを返す。
// エンコードに失敗した場合は500のエラーレスポンスになる。
func JSON(status int, v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
		return Error(http.StatusInternalServerError, "Internal server error")
	}
	return &Response{
		StatusCode: status,
		Headers:    baseHeaders("application/json"),
		Body:       string(b),
	}
}

// Error は {"error": message} 形式のJSONエラーレスポンスを返す。
func Error(status int, message string) *Response {
	b, _ := json.Marshal(map[string]string{"error": message})
	return &Response{
		StatusCode: status,
		Headers:    baseHeaders("application/json"),
		Body:       string(b),
	}
}

// Text はtext/plainのレスポンスを返す。決済Webhookの応答に使う。
func Text(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Headers:    baseHeaders("text/plain; charset=utf-8"),
		Body:       body,
	}
}

// Preflight はOPTIONSリクエストへの応答を返す。
// methodsとheadersはエンドポイントごとの許可リスト（例: "GET, POST, OPTIONS"）。
func Preflight(methods, headers string) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": methods,
			"Access-Control-Allow-Headers": headers,
			"Access-Control-Max-Age":       PreflightMaxAge,
		},
	}
}

// Func はEnvelopeを扱うハンドラ関数。
type Func func(ctx context.Context, req *Request) *Response

// FromHTTP はhttp.RequestをRequestに変換する。
// ヘッダーとクエリは最初の値のみを保持する。
func FromHTTP(r *http.Request) (*Request, error) {
	req := &Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: make(map[string]string, len(r.Header)),
		Query:   make(map[string]string),
	}
	for k, vs := range r.Header {
		if len(vs) > 0 {
			req.Headers[k] = vs[0]
		}
	}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			req.Query[k] = vs[0]
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if len(body) > MaxBodyBytes {
			return nil, ErrBodyTooLarge
		}
		req.Body = string(body)
	}

	return req, nil
}

// Write はResponseをhttp.ResponseWriterに書き込む。
func Write(w http.ResponseWriter, resp *Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		io.WriteString(w, resp.Body)
	}
}

// Adapt はFuncをhttp.Handlerに変換する。
func Adapt(fn Func) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := FromHTTP(r)
		if errors.Is(err, ErrBodyTooLarge) {
			Write(w, Error(http.StatusRequestEntityTooLarge, "Request body too large"))
			return
		}
		if err != nil {
			Write(w, Error(http.StatusBadRequest, "Invalid request body"))
			return
		}

		resp := fn(r.Context(), req)
		if resp == nil {
			resp = Error(http.StatusInternalServerError, "Internal server error")
		}
		Write(w, resp)
	})
}
