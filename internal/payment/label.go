package payment

import (
	"errors"
	"strconv"
	"strings"
)

const labelSeparator = "_"

// ErrMalformedLabel はラベルを (email, bookId, purchaseType) に分解できない場合に返される。
var ErrMalformedLabel = errors.New("malformed payment label")

// Label は決済通知と購入を対応付けるキー。
// ワイヤ形式は "{email}_{bookId}_{purchaseType}"。
type Label struct {
	UserEmail    string
	BookID       int64
	PurchaseType string
}

// EncodeLabel はラベル文字列を生成する。
func EncodeLabel(userEmail string, bookID int64, purchaseType string) string {
	return userEmail + labelSeparator + strconv.FormatInt(bookID, 10) + labelSeparator + purchaseType
}

// String はラベルのワイヤ形式を返す。
func (l Label) String() string {
	return EncodeLabel(l.UserEmail, l.BookID, l.PurchaseType)
}

// ParseLabel はラベル文字列を分解する。
// 末尾から購入種別、書籍IDの順に取り出し、残りをemailとする。
// このためemailに "_" が含まれていても復元できる。購入種別には "_" を含められない。
// 末尾からの分解で書籍IDが得られない場合は先頭3区切りを (email, bookId, purchaseType) とし、
// 4区切り以上のラベル（例: "a@b.com_5_download_x"）も受け付ける。
func ParseLabel(s string) (Label, error) {
	if l, err := parseFromRight(s); err == nil {
		return l, nil
	}
	return parseFromLeft(s)
}

func parseFromRight(s string) (Label, error) {
	typeSep := strings.LastIndex(s, labelSeparator)
	if typeSep < 0 {
		return Label{}, ErrMalformedLabel
	}
	idSep := strings.LastIndex(s[:typeSep], labelSeparator)
	if idSep < 0 {
		return Label{}, ErrMalformedLabel
	}
	return newLabel(s[:idSep], s[idSep+1:typeSep], s[typeSep+1:])
}

func parseFromLeft(s string) (Label, error) {
	parts := strings.Split(s, labelSeparator)
	if len(parts) < 3 {
		return Label{}, ErrMalformedLabel
	}
	return newLabel(parts[0], parts[1], parts[2])
}

func newLabel(email, rawID, purchaseType string) (Label, error) {
	if email == "" || purchaseType == "" {
		return Label{}, ErrMalformedLabel
	}

	bookID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || bookID <= 0 {
		return Label{}, ErrMalformedLabel
	}

	return Label{UserEmail: email, BookID: bookID, PurchaseType: purchaseType}, nil
}

// ValidPurchaseType はpurchaseTypeがラベルに埋め込めるかどうかを返す。
func ValidPurchaseType(purchaseType string) bool {
	return purchaseType != "" && !strings.Contains(purchaseType, labelSeparator)
}
