package payment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/model"
)

// DefaultFormURL はYooMoneyのクイックペイフォームの送信先。
const DefaultFormURL = "https://yoomoney.ru/quickpay/confirm"

// FormRequest は支払いフォーム生成の入力。値はクエリパラメータの文字列のまま受け取る。
type FormRequest struct {
	BookID       string `validate:"required"`
	UserEmail    string `validate:"required"`
	PurchaseType string
	Amount       string `validate:"required"`
}

// Form はクライアントがYooMoneyへPOSTするためのフォームパラメータ。
type Form struct {
	Receiver     string `json:"receiver"`
	QuickpayForm string `json:"quickpay_form"`
	Targets      string `json:"targets"`
	PaymentType  string `json:"paymentType"`
	Sum          string `json:"sum"`
	Label        string `json:"label"`
	SuccessURL   string `json:"successURL"`
	FormURL      string `json:"formUrl"`
}

// FormBuilder は支払いフォームのパラメータを組み立てる。
type FormBuilder struct {
	receiver string
	siteURL  string
	formURL  string
	validate *validator.Validate
}

// NewFormBuilder はFormBuilderを生成する。
// receiverはYooMoneyのウォレット番号、siteURLは決済完了後の戻り先のベースURL。
func NewFormBuilder(receiver, siteURL, formURL string) *FormBuilder {
	if formURL == "" {
		formURL = DefaultFormURL
	}
	return &FormBuilder{
		receiver: receiver,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		formURL:  formURL,
		validate: validator.New(),
	}
}

// Build はフォームパラメータを生成する。
// bookId、userEmail、amount、受取人のいずれかが欠けている場合は "Missing required parameters" を返す。
func (b *FormBuilder) Build(req FormRequest) (*Form, error) {
	if b.receiver == "" || b.validate.Struct(req) != nil {
		return nil, model.NewInvalidInputError("Missing required parameters")
	}

	bookID, err := strconv.ParseInt(req.BookID, 10, 64)
	if err != nil || bookID <= 0 {
		return nil, model.NewInvalidInputError("Invalid bookId")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, model.NewInvalidInputError("Invalid amount")
	}

	purchaseType := req.PurchaseType
	if purchaseType == "" {
		purchaseType = model.PurchaseTypeDownload
	}
	if !ValidPurchaseType(purchaseType) {
		return nil, model.NewInvalidInputError("Invalid purchaseType")
	}

	return &Form{
		Receiver:     b.receiver,
		QuickpayForm: "shop",
		Targets:      fmt.Sprintf("Оплата книги #%d", bookID),
		PaymentType:  "AC",
		Sum:          amount.StringFixed(2),
		Label:        EncodeLabel(req.UserEmail, bookID, purchaseType),
		SuccessURL:   fmt.Sprintf("%s/payment-success?bookId=%d", b.siteURL, bookID),
		FormURL:      b.formURL,
	}, nil
}
