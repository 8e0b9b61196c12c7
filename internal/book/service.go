// Package book は書籍カタログのドメインロジックを提供する。
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/repository"
)

// 売上統計の集計期間。
const (
	StatsDays  = 30
	StatsWeeks = 12
)

var maxRating = decimal.NewFromInt(10)

// Sanitizer は説明文などのHTMLをサニタイズするインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// SalesReader は売上統計の取得に必要な購入台帳の読み取りインターフェース。
type SalesReader interface {
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	SalesByDay(ctx context.Context, days int) ([]model.SalesBucket, error)
	SalesByWeek(ctx context.Context, weeks int) ([]model.SalesBucket, error)
}

// FormatInput は書籍フォーマットの入力。
type FormatInput struct {
	Format  string `json:"format" validate:"required"`
	FileURL string `json:"fileUrl" validate:"required"`
}

// Input は書籍の作成・更新リクエストのボディ。
type Input struct {
	ID                 int64               `json:"id"`
	Title              string              `json:"title" validate:"required"`
	Author             string              `json:"author" validate:"required"`
	Genre              string              `json:"genre" validate:"required"`
	Rating             decimal.Decimal     `json:"rating"`
	Price              decimal.NullDecimal `json:"price"`
	DiscountPrice      decimal.NullDecimal `json:"discountPrice"`
	Cover              string              `json:"cover"`
	Description        string              `json:"description"`
	Badges             []string            `json:"badges"`
	EbookText          *string             `json:"ebookText"`
	EbookPrice         decimal.NullDecimal `json:"ebookPrice"`
	EbookDiscountPrice decimal.NullDecimal `json:"ebookDiscountPrice"`
	IsAdultContent     bool                `json:"isAdultContent"`
	Formats            []FormatInput       `json:"formats" validate:"dive"`
}

// Service は書籍カタログのサービス層。
type Service struct {
	bookRepo  repository.BookRepository
	sales     SalesReader
	sanitizer Sanitizer
	validate  *validator.Validate
}

// NewService はServiceの新しいインスタンスを生成する。sanitizerがnilの場合はHTMLをそのまま保存する。
func NewService(bookRepo repository.BookRepository, sales SalesReader, sanitizer Sanitizer) *Service {
	return &Service{
		bookRepo:  bookRepo,
		sales:     sales,
		sanitizer: sanitizer,
		validate:  validator.New(),
	}
}

// Get は指定IDの書籍をフォーマット付きで返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("書籍の取得に失敗しました: %w", err)
	}
	if b == nil {
		return nil, model.NewNotFoundError("Book not found")
	}
	return b, nil
}

// List は全書籍を新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗しました: %w", err)
	}
	return books, nil
}

// Create は書籍とフォーマットを登録する。
func (s *Service) Create(ctx context.Context, in Input) (*model.Book, error) {
	b, err := s.toModel(in)
	if err != nil {
		return nil, err
	}

	if err := s.bookRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("書籍の登録に失敗しました: %w", err)
	}

	slog.Info("書籍を登録しました",
		slog.Int64("book_id", b.ID),
		slog.Int("formats", len(b.Formats)),
	)
	return b, nil
}

// Update は書籍を更新し、フォーマットを入力内容で置き換える。
func (s *Service) Update(ctx context.Context, in Input) error {
	if in.ID <= 0 {
		return model.NewInvalidInputError("Book ID required")
	}

	b, err := s.toModel(in)
	if err != nil {
		return err
	}
	b.ID = in.ID

	err = s.bookRepo.Update(ctx, b)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewNotFoundError("Book not found")
	}
	if err != nil {
		return fmt.Errorf("書籍の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は書籍を削除する。購入済みの書籍は台帳を保つため削除できない。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.NewInvalidInputError("Book ID required")
	}

	err := s.bookRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.NewNotFoundError("Book not found")
	case errors.Is(err, repository.ErrReferenced):
		return model.NewInvalidInputError("Book has purchases and cannot be deleted")
	case err != nil:
		return fmt.Errorf("書籍の削除に失敗しました: %w", err)
	}

	slog.Info("書籍を削除しました", slog.Int64("book_id", id))
	return nil
}

// Stats は書籍数、購入件数、売上合計、直近30日の日別売上、直近12週の週別売上を返す。
func (s *Service) Stats(ctx context.Context) (*model.SalesStats, error) {
	stats := &model.SalesStats{}
	var err error

	if stats.BooksCount, err = s.bookRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("書籍数の取得に失敗しました: %w", err)
	}
	if stats.PurchasesCount, err = s.sales.Count(ctx); err != nil {
		return nil, fmt.Errorf("購入件数の取得に失敗しました: %w", err)
	}
	if stats.TotalRevenue, err = s.sales.TotalRevenue(ctx); err != nil {
		return nil, fmt.Errorf("売上合計の取得に失敗しました: %w", err)
	}
	if stats.SalesByDay, err = s.sales.SalesByDay(ctx, StatsDays); err != nil {
		return nil, fmt.Errorf("日別売上の取得に失敗しました: %w", err)
	}
	if stats.SalesByWeek, err = s.sales.SalesByWeek(ctx, StatsWeeks); err != nil {
		return nil, fmt.Errorf("週別売上の取得に失敗しました: %w", err)
	}

	return stats, nil
}

// toModel は入力を検証し、サニタイズ済みのmodel.Bookに変換する。
func (s *Service) toModel(in Input) (*model.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)

	if in.Title == "" || in.Author == "" || in.Genre == "" || !in.Price.Valid {
		return nil, model.NewInvalidInputError("Title, author, genre and price required")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, model.NewInvalidInputError("Format and fileUrl required")
	}
	if in.Price.Decimal.IsNegative() || isNegative(in.DiscountPrice) ||
		isNegative(in.EbookPrice) || isNegative(in.EbookDiscountPrice) {
		return nil, model.NewInvalidInputError("Price must not be negative")
	}
	if in.Rating.IsNegative() || in.Rating.GreaterThan(maxRating) {
		return nil, model.NewInvalidInputError("Rating must be between 0 and 10")
	}

	b := &model.Book{
		Title:              in.Title,
		Author:             in.Author,
		Genre:              in.Genre,
		Rating:             in.Rating,
		Price:              in.Price.Decimal,
		DiscountPrice:      in.DiscountPrice,
		Cover:              in.Cover,
		Description:        s.sanitize(in.Description),
		Badges:             in.Badges,
		EbookPrice:         in.EbookPrice,
		EbookDiscountPrice: in.EbookDiscountPrice,
		IsAdultContent:     in.IsAdultContent,
	}
	if in.EbookText != nil {
		text := s.sanitize(*in.EbookText)
		b.EbookText = &text
	}
	if b.Badges == nil {
		b.Badges = []string{}
	}
	for _, f := range in.Formats {
		b.Formats = append(b.Formats, model.BookFormat{Format: f.Format, FileURL: f.FileURL})
	}

	return b, nil
}

func (s *Service) sanitize(html string) string {
	if s.sanitizer == nil {
		return html
	}
	return s.sanitizer.Sanitize(html)
}

func isNegative(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsNegative()
}
