// Package payment はYooMoney決済連携（通知の署名検証、ラベルの符号化、支払いフォームの生成）を提供する。
package payment

import (
	"fmt"
	"net/url"
	"strings"
)

// Notification はYooMoneyからのHTTP通知（application/x-www-form-urlencoded）を表す。
// 値はURLデコード済みの文字列をそのまま保持する。署名はこの文字列表現に対して計算されるため、
// Amountも数値に変換せずに保持する。
type Notification struct {
	NotificationType string
	OperationID      string
	Amount           string
	Currency         string
	Datetime         string
	Sender           string
	Codepro          string
	Label            string
	SHA1Hash         string
}

// ParseNotification はフォームエンコードされた通知ボディを解析する。
// 欠落したフィールドは空文字として扱う。
func ParseNotification(body string) (Notification, error) {
	values, err := url.ParseQuery(strings.TrimSpace(body))
	if err != nil {
		return Notification{}, fmt.Errorf("parse notification body: %w", err)
	}

	return Notification{
		NotificationType: values.Get("notification_type"),
		OperationID:      values.Get("operation_id"),
		Amount:           values.Get("amount"),
		Currency:         values.Get("currency"),
		Datetime:         values.Get("datetime"),
		Sender:           values.Get("sender"),
		Codepro:          values.Get("codepro"),
		Label:            values.Get("label"),
		SHA1Hash:         values.Get("sha1_hash"),
	}, nil
}

// CanonicalString は署名対象の文字列を返す。
// フィールドの順序はYooMoneyの仕様で固定されており、変更すると検証が通らなくなる。
func (n Notification) CanonicalString(secret string) string {
	return strings.Join([]string{
		n.NotificationType,
		n.OperationID,
		n.Amount,
		n.Currency,
		n.Datetime,
		n.Sender,
		n.Codepro,
		secret,
		n.Label,
	}, "&")
}
