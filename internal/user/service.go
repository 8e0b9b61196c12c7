// Package user はユーザー登録と参照のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pulsebook/storefront/internal/model"
	"github.com/pulsebook/storefront/internal/repository"
)

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// Service はユーザー管理のサービス層。
// パスワードやセッションは扱わず、emailによる登録と参照のみを提供する。
type Service struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// Register はユーザーを登録する。
// 同じemailのユーザーが既に存在する場合は既存ユーザーとcreated=falseを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, bool, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if in.Email == "" || in.Name == "" {
		return nil, false, model.NewInvalidInputError("Email and name required")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, false, model.NewInvalidInputError("Invalid email")
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	u := &model.User{Email: in.Email, Name: in.Name}
	err = s.userRepo.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		// 同時登録で先を越された場合は既存ユーザーとして扱う
		existing, err = s.userRepo.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, false, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("ユーザーの登録に失敗しました: %w", repository.ErrDuplicate)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.Int64("user_id", u.ID),
		slog.String("user_email", u.Email),
	)
	return u, true, nil
}

// Lookup はemailでユーザーを取得する。
func (s *Service) Lookup(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.NewInvalidInputError("Email required")
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFoundError("User not found")
	}
	return u, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Count はユーザー数を返す。
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}
	return n, nil
}
