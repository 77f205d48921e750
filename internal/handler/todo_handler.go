package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/masaki/todoline/internal/middleware"
	"github.com/masaki/todoline/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// Create は新しいTodoを作成する。
	Create(ctx context.Context, userID, title, description string) (*model.Todo, error)
	// List はユーザーのTodo一覧を返す。
	List(ctx context.Context, userID string) ([]*model.Todo, error)
	// UpdateCompletion はTodoの完了状態を更新する。
	UpdateCompletion(ctx context.Context, userID, todoID string, completed bool) (*model.Todo, error)
	// Delete はTodoを削除する。
	Delete(ctx context.Context, userID, todoID string) error
}

// TodoMetricsRecorder はTodo操作のメトリクス記録インターフェース。
type TodoMetricsRecorder interface {
	RecordTodoOperation(operation string)
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	metrics TodoMetricsRecorder
}

// NewTodoHandler はTodoHandlerを生成する。
// metricsはnilを許容する（テストやメトリクス無効構成）。
func NewTodoHandler(service TodoServiceInterface, metrics TodoMetricsRecorder) *TodoHandler {
	return &TodoHandler{
		service: service,
		metrics: metrics,
	}
}

// todoResponse はTodoのAPIレスポンス。
type todoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

// createTodoRequest はTodo作成リクエストのボディ。
type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateCompletionRequest は完了状態更新リクエストのボディ。
// completedの欠落とfalseを区別するためポインタで受ける。
type updateCompletionRequest struct {
	Completed *bool `json:"completed"`
}

// markCompletedRequest は完了マークリクエストのボディ。
type markCompletedRequest struct {
	ID string `json:"id"`
}

// Create は新しいTodoを作成する。
// POST /todo
// ボディの解析失敗およびタイトル未指定は411を返す（互換性のため）。
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusLengthRequired, model.NewInvalidTitleError())
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTodoOperation("create")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "TODOを作成しました。",
		"id":      created.ID,
		"todo":    toTodoResponse(created),
	})
}

// List はユーザーのTodo一覧を取得する。
// GET /todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTodoOperation("list")

	// Todoが1件もない場合も空配列を返す
	list := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		list = append(list, toTodoResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"todos": list,
	})
}

// UpdateCompletion はTodoの完了状態を更新する。
// PATCH /todos/:id
// completedフィールドの欠落は400を返す。
func (h *TodoHandler) UpdateCompletion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	var req updateCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}
	if req.Completed == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("completedは必須です。"))
		return
	}

	updated, err := h.service.UpdateCompletion(r.Context(), userID, todoID, *req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTodoOperation("update")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(updated))
}

// MarkCompleted はTodoを完了にする。
// PUT /completed
// idの欠落は411を返す（互換性のため）。
func (h *TodoHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req markCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeAPIErrorResponse(w, http.StatusLengthRequired, model.NewInvalidRequestError("idは必須です。"))
		return
	}

	if _, err := h.service.UpdateCompletion(r.Context(), userID, req.ID, true); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTodoOperation("update")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"msg": "TODOを完了にしました。",
	})
}

// Delete はTodoを削除する。
// DELETE /todos/:id
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTodoOperation("delete")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "TODOを削除しました。",
		"id":      todoID,
	})
}

func (h *TodoHandler) recordTodoOperation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordTodoOperation(operation)
	}
}

// apiErrorResponse はAPIエラーレスポンスのJSON構造。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeTodoNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidTitle:
		return http.StatusLengthRequired
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
