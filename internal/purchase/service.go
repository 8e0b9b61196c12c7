// Package purchase は購入台帳への書き込み（決済通知経由と直接購入）と購入履歴の参照を提供する。
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/metrics"
	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/payment"
	"github.com/pulsebook/storefront/internal/repository"
)

// SignatureVerifier は決済通知の署名検証インターフェース。
type SignatureVerifier interface {
	Verify(n payment.Notification) bool
}

// Recorder は購入関連のメトリクス記録インターフェース。
type Recorder interface {
	RecordPurchase(source string)
	RecordDuplicatePurchase(source string)
	RecordWebhookNotification(outcome string)
}

// Request は直接購入の入力。
type Request struct {
	BookID       int64 `validate:"gt=0"`
	PurchaseType string
	Price        decimal.Decimal
}

// Service は購入台帳のサービス層。
// 重複の判定はデータベースの一意索引に任せ、挿入結果のErrDuplicateを経路ごとに解釈する。
// Webhook経由の重複は成功として扱い、直接購入の重複は "Already purchased" として拒否する。
type Service struct {
	purchaseRepo repository.PurchaseRepository
	verifier     SignatureVerifier
	recorder     Recorder
	validate     *validator.Validate
}

// NewService はServiceの新しいインスタンスを生成する。recorderはnilでもよい。
func NewService(purchaseRepo repository.PurchaseRepository, verifier SignatureVerifier, recorder Recorder) *Service {
	return &Service{
		purchaseRepo: purchaseRepo,
		verifier:     verifier,
		recorder:     recorder,
		validate:     validator.New(),
	}
}

// HandleNotification はYooMoneyからの通知ボディを検証し、購入を記録する。
// 署名が一致しない場合はデータベースに触れる前にInvalidSignatureエラーを返す。
func (s *Service) HandleNotification(ctx context.Context, body string) error {
	n, err := payment.ParseNotification(body)
	if err != nil || !s.verifier.Verify(n) {
		slog.Warn("invalid payment notification signature",
			slog.String("operation_id", n.OperationID),
		)
		s.recordWebhook(metrics.OutcomeInvalidSignature)
		return model.NewInvalidSignatureError()
	}

	return s.RecordNotification(ctx, n)
}

// RecordNotification は検証済みの通知から購入を記録する。
// ラベルや金額が不正な通知はプロバイダの再送を止めるため記録せずに成功を返す。
// 同じ購入の再送は何もせずに成功を返す。
func (s *Service) RecordNotification(ctx context.Context, n payment.Notification) error {
	label, err := payment.ParseLabel(n.Label)
	if err != nil {
		slog.Warn("malformed payment label",
			slog.String("operation_id", n.OperationID),
			slog.String("label", n.Label),
		)
		s.recordWebhook(metrics.OutcomeMalformedLabel)
		return nil
	}

	amount, err := decimal.NewFromString(n.Amount)
	if err != nil || amount.IsNegative() {
		slog.Warn("malformed payment amount",
			slog.String("operation_id", n.OperationID),
			slog.String("amount", n.Amount),
		)
		s.recordWebhook(metrics.OutcomeMalformedAmount)
		return nil
	}

	p := &model.Purchase{
		UserEmail:    label.UserEmail,
		BookID:       label.BookID,
		PurchaseType: label.PurchaseType,
		Price:        amount,
		PaymentID:    n.OperationID,
	}

	err = s.purchaseRepo.Insert(ctx, p)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		slog.Info("duplicate webhook notification",
			slog.String("operation_id", n.OperationID),
			slog.String("user_email", p.UserEmail),
			slog.Int64("book_id", p.BookID),
			slog.String("purchase_type", p.PurchaseType),
		)
		s.recordDuplicate(model.PurchaseSourceWebhook)
		s.recordWebhook(metrics.OutcomeAccepted)
		return nil
	case errors.Is(err, repository.ErrReferenceNotFound):
		// 存在しない書籍への支払い。再送しても結果は変わらないため受理する。
		slog.Warn("payment for unknown book",
			slog.String("operation_id", n.OperationID),
			slog.Int64("book_id", p.BookID),
		)
		s.recordWebhook(metrics.OutcomeUnknownBook)
		return nil
	case err != nil:
		return fmt.Errorf("決済通知の購入記録に失敗しました: %w", err)
	}

	slog.Info("purchase recorded",
		slog.Int64("purchase_id", p.ID),
		slog.String("user_email", p.UserEmail),
		slog.Int64("book_id", p.BookID),
		slog.String("purchase_type", p.PurchaseType),
		slog.String("price", p.Price.String()),
		slog.String("source", string(model.PurchaseSourceWebhook)),
	)
	s.recordPurchase(model.PurchaseSourceWebhook)
	s.recordWebhook(metrics.OutcomeAccepted)
	return nil
}

// Purchase はクライアントからの直接購入を記録する。
// 同じ (email, bookId, purchaseType) の購入が既にある場合はAlreadyPurchasedエラーを返す。
func (s *Service) Purchase(ctx context.Context, userEmail string, req Request) (*model.Purchase, error) {
	if userEmail == "" {
		return nil, model.NewInvalidInputError("User email required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, model.NewInvalidInputError("Book ID required")
	}

	purchaseType := req.PurchaseType
	if purchaseType == "" {
		purchaseType = model.PurchaseTypeDownload
	}
	if !payment.ValidPurchaseType(purchaseType) {
		return nil, model.NewInvalidInputError("Invalid purchaseType")
	}
	if req.Price.IsNegative() {
		return nil, model.NewInvalidInputError("Price must not be negative")
	}

	p := &model.Purchase{
		UserEmail:    userEmail,
		BookID:       req.BookID,
		PurchaseType: purchaseType,
		Price:        req.Price,
	}

	err := s.purchaseRepo.Insert(ctx, p)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		s.recordDuplicate(model.PurchaseSourceDirect)
		return nil, model.NewAlreadyPurchasedError()
	case errors.Is(err, repository.ErrReferenceNotFound):
		return nil, model.NewNotFoundError("Book not found")
	case err != nil:
		return nil, fmt.Errorf("購入の記録に失敗しました: %w", err)
	}

	slog.Info("purchase recorded",
		slog.Int64("purchase_id", p.ID),
		slog.String("user_email", p.UserEmail),
		slog.Int64("book_id", p.BookID),
		slog.String("purchase_type", p.PurchaseType),
		slog.String("price", p.Price.String()),
		slog.String("source", string(model.PurchaseSourceDirect)),
	)
	s.recordPurchase(model.PurchaseSourceDirect)
	return p, nil
}

// History はユーザーの購入履歴を返す。
func (s *Service) History(ctx context.Context, userEmail string) ([]*model.PurchaseWithBook, error) {
	if userEmail == "" {
		return nil, model.NewInvalidInputError("User email required")
	}

	purchases, err := s.purchaseRepo.ListByEmail(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("購入履歴の取得に失敗しました: %w", err)
	}
	return purchases, nil
}

func (s *Service) recordPurchase(source model.PurchaseSource) {
	if s.recorder != nil {
		s.recorder.RecordPurchase(string(source))
	}
}

func (s *Service) recordDuplicate(source model.PurchaseSource) {
	if s.recorder != nil {
		s.recorder.RecordDuplicatePurchase(string(source))
	}
}

func (s *Service) recordWebhook(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordWebhookNotification(outcome)
	}
}
