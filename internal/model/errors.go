// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はクライアントに返すエラーを表す。
// レスポンスボディは {"error": Message} の形式になる。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアント向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyPurchased = "ALREADY_PURCHASED"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewInvalidInputError は入力不備エラーを生成する。
func NewInvalidInputError(message string) *APIError {
	return &APIError{Code: ErrCodeInvalidInput, Message: message}
}

// NewNotFoundError は対象が存在しない場合のエラーを生成する。
// messageには "Book not found" のように対象を含めた文言を渡す。
func NewNotFoundError(message string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: message}
}

// NewAlreadyPurchasedError は直接購入で同一の購入が既に存在する場合のエラーを生成する。
func NewAlreadyPurchasedError() *APIError {
	return &APIError{Code: ErrCodeAlreadyPurchased, Message: "Already purchased"}
}

// NewInvalidSignatureError は決済通知の署名不一致エラーを生成する。
func NewInvalidSignatureError() *APIError {
	return &APIError{Code: ErrCodeInvalidSignature, Message: "Invalid signature"}
}

// NewMethodNotAllowedError は未対応メソッドのエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return &APIError{Code: ErrCodeMethodNotAllowed, Message: "Method not allowed"}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{Code: ErrCodeRateLimited, Message: "Too many requests"}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ出力すること。
func NewInternalError() *APIError {
	return &APIError{Code: ErrCodeInternal, Message: "Internal server error"}
}
