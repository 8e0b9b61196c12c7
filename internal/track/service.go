// Package track は音楽トラックカタログのドメインロジックを提供する。
package track

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/repository"
)

// Input はトラックの作成・更新リクエストのボディ。
type Input struct {
	ID             int64  `json:"id"`
	Title          string `json:"title" validate:"required"`
	Artist         string `json:"artist" validate:"required"`
	Duration       string `json:"duration" validate:"max=20"`
	Cover          string `json:"cover"`
	AudioURL       string `json:"audioUrl" validate:"required"`
	Genre          string `json:"genre"`
	Year           *int   `json:"year" validate:"omitempty,min=1000,max=9999"`
	Price          int    `json:"price" validate:"min=0"`
	IsAdultContent bool   `json:"isAdultContent"`
}

// Service はトラックカタログのサービス層。
type Service struct {
	trackRepo repository.TrackRepository
	validate  *validator.Validate
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(trackRepo repository.TrackRepository) *Service {
	return &Service{
		trackRepo: trackRepo,
		validate:  validator.New(),
	}
}

// List は全トラックを新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Track, error) {
	tracks, err := s.trackRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("トラック一覧の取得に失敗しました: %w", err)
	}
	return tracks, nil
}

// Count はトラック数を返す。
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.trackRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("トラック数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// Create はトラックを登録する。yearが未指定の場合はDefaultTrackYearを使う。
func (s *Service) Create(ctx context.Context, in Input) (*model.Track, error) {
	t, err := s.toModel(in)
	if err != nil {
		return nil, err
	}
	if t.Year == nil {
		year := model.DefaultTrackYear
		t.Year = &year
	}

	if err := s.trackRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("トラックの登録に失敗しました: %w", err)
	}
	return t, nil
}

// Update はトラックを更新する。
func (s *Service) Update(ctx context.Context, in Input) error {
	if in.ID <= 0 {
		return model.NewInvalidInputError("Track ID required")
	}

	t, err := s.toModel(in)
	if err != nil {
		return err
	}
	t.ID = in.ID

	err = s.trackRepo.Update(ctx, t)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewNotFoundError("Track not found")
	}
	if err != nil {
		return fmt.Errorf("トラックの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete はトラックを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.NewInvalidInputError("Track ID is required")
	}

	err := s.trackRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewNotFoundError("Track not found")
	}
	if err != nil {
		return fmt.Errorf("トラックの削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) toModel(in Input) (*model.Track, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Artist = strings.TrimSpace(in.Artist)
	in.AudioURL = strings.TrimSpace(in.AudioURL)

	if in.Title == "" || in.Artist == "" || in.AudioURL == "" {
		return nil, model.NewInvalidInputError("Title, artist and audioUrl required")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, model.NewInvalidInputError(invalidFieldMessage(err))
	}

	return &model.Track{
		Title:          in.Title,
		Artist:         in.Artist,
		Duration:       in.Duration,
		Cover:          in.Cover,
		AudioURL:       in.AudioURL,
		Genre:          in.Genre,
		Year:           in.Year,
		Price:          in.Price,
		IsAdultContent: in.IsAdultContent,
	}, nil
}

// invalidFieldMessage は検証エラーの最初のフィールドからメッセージを組み立てる。
func invalidFieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Invalid " + strings.ToLower(verrs[0].Field())
	}
	return "Invalid track"
}
