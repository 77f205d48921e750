// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/masaki/todoline/internal/middleware"
	"github.com/masaki/todoline/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (string, error)
	GetCurrentUser(ctx context.Context, userID string) (*model.User, error)
	Logout(ctx context.Context, userID string)
}

// AuthMetricsRecorder はログイン結果のメトリクス記録インターフェース。
type AuthMetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendURL  string
	CookieSecure bool
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
// metricsはnilを許容する（テストやメトリクス無効構成）。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
// 成功時はトークンをURLパラメータに載せてフロントエンドにリダイレクトする。
// プロバイダーの拒否やコード交換の失敗時はエラーインジケーター付きで
// ログインページにリダイレクトし、部分的なユーザーレコードは作成しない。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		h.recordLoginFailure("state_mismatch")
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("stateパラメータが一致しません。"))
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	// プロバイダーが同意を拒否した場合はcodeなしでリダイレクトされる
	code := r.URL.Query().Get("code")
	if code == "" {
		h.recordLoginFailure("provider_denied")
		h.redirectLoginFailure(w, r)
		return
	}

	// 3. 認証処理とトークン発行
	token, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		h.recordLoginFailure("exchange_failed")
		h.redirectLoginFailure(w, r)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	// 4. トークンをURLパラメータに載せてフロントエンドにリダイレクト
	// クライアント側がトークンを保存し、URLから除去する責務を負う
	http.Redirect(w, r, h.config.FrontendURL+"/todos?token="+token, http.StatusFound)
}

// User は現在のログインユーザー情報を返す。
// GET /auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": map[string]interface{}{
			"id":          user.ID,
			"displayName": user.Name,
			"email":       user.Email,
			"avatarUrl":   user.AvatarURL,
		},
	})
}

// Logout はログアウトを処理する。
// GET /auth/logout
// トークンは自己完結型のためサーバー側の破棄は不要で、常に成功する。
// クレデンシャルなしで呼ばれてもエラーにしない。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	h.service.Logout(r.Context(), userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ログアウトしました。",
	})
}

// redirectLoginFailure はエラーインジケーター付きでログインページにリダイレクトする。
func (h *AuthHandler) redirectLoginFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.config.FrontendURL+"/?error=authentication_failed", http.StatusFound)
}

func (h *AuthHandler) recordLoginFailure(reason string) {
	if h.metrics != nil {
		h.metrics.RecordLoginFailure(reason)
	}
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
