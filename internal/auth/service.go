// Package auth はOAuth認証フローとベアラートークンの発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/masaki/todoline/internal/model"
	"github.com/masaki/todoline/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google", "github" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// TokenIssuer は認証済みユーザーに対する署名付きトークンの発行インターフェース。
type TokenIssuer interface {
	// Issue はユーザーIDをsubjectとする署名付きトークンを発行する。
	Issue(subjectID string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth     OAuthProvider
	issuer    TokenIssuer
	userRepo  repository.UserRepository
	identRepo repository.IdentityRepository
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	issuer TokenIssuer,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
) *Service {
	return &Service{
		oauth:     oauth,
		issuer:    issuer,
		userRepo:  userRepo,
		identRepo: identRepo,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、ベアラートークンを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定しログインする。
// プロフィール（表示名・アバター）は初回ログイン時の値を保持し、
// 2回目以降のログインでは上書きしない。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. ユーザーを特定（存在しなければ作成）
	userID, err := s.resolveUser(ctx, userInfo)
	if err != nil {
		return "", err
	}

	// 3. ベアラートークンを発行
	token, err := s.issuer.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

// resolveUser は外部IDから内部ユーザーIDを解決する。
// 同一外部IDによる同時初回ログインはidentitiesテーブルの
// 一意性制約で検出し、先勝ちで作成されたユーザーを再取得する。
func (s *Service) resolveUser(ctx context.Context, userInfo *OAuthUserInfo) (string, error) {
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find identity: %w", err)
	}

	if identity != nil {
		// 既存ユーザー: identityからユーザーIDを取得
		slog.Info("existing user logged in",
			slog.String("user_id", identity.UserID),
			slog.String("provider", userInfo.Provider),
		)
		return identity.UserID, nil
	}

	// 新規ユーザー: usersレコードとidentitiesレコードを同時に作成
	newUserID := uuid.New().String()
	now := time.Now()

	newUser := &model.User{
		ID:        newUserID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		AvatarURL: userInfo.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUserID,
		Provider:       userInfo.Provider,
		ProviderUserID: userInfo.ProviderUserID,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
		if repository.IsUniqueViolation(err) {
			// 同時初回ログインで他方が先に作成した場合は再取得する
			existing, findErr := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
			if findErr != nil {
				return "", fmt.Errorf("failed to re-find identity after conflict: %w", findErr)
			}
			if existing == nil {
				return "", fmt.Errorf("identity not found after unique violation: %w", err)
			}
			slog.Info("concurrent first login resolved",
				slog.String("user_id", existing.UserID),
				slog.String("provider", userInfo.Provider),
			)
			return existing.UserID, nil
		}
		return "", fmt.Errorf("failed to create user and identity: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", newUserID),
		slog.String("email", userInfo.Email),
		slog.String("provider", userInfo.Provider),
	)
	return newUserID, nil
}

// GetCurrentUser は認証済みユーザーIDから現在のユーザーを取得する。
// ユーザーが存在しない場合はUSER_NOT_FOUNDのAPIErrorを返す。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// Logout はログアウトを記録する。
// トークンは自己完結型のためサーバー側の破棄対象は存在せず、
// クライアント側でのトークン破棄により完了する。
func (s *Service) Logout(ctx context.Context, userID string) {
	slog.Info("user logged out", slog.String("user_id", userID))
}
