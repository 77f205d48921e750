// Package todo はTodo管理のドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masaki/todoline/internal/model"
	"github.com/masaki/todoline/internal/repository"
	"github.com/masaki/todoline/internal/security"
)

// Service はTodo管理のサービス層。
// 作成、一覧取得、完了状態の更新、削除のビジネスロジックを提供する。
// 全ての操作は認証済みユーザーのIDにスコープされ、
// 他ユーザーのTodoへのアクセスは所有権チェックで拒否される。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		todoRepo:  todoRepo,
		sanitizer: sanitizer,
	}
}

// Create は新しいTodoを作成する。
// タイトルが空（空白のみ含む）の場合はINVALID_TITLEエラーを返す。
// 説明文はサニタイズしてから保存する。
// 完了状態は常に未完了で初期化される。
func (s *Service) Create(ctx context.Context, userID, title, description string) (*model.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewInvalidTitleError()
	}

	todo := &model.Todo{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: s.sanitizer.Sanitize(description),
		Completed:   false,
		CreatedAt:   time.Now(),
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}

	return todo, nil
}

// List は認証済みユーザーのTodo一覧を作成順で返す。
// 他ユーザーのTodoは一切含まれない。Todoが1件もない場合は空スライスを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// UpdateCompletion はTodoの完了状態を更新し、更新後のTodoを返す。
// Todoが存在しない場合はTODO_NOT_FOUND、
// 存在するが他ユーザーの所有の場合はFORBIDDENエラーを返す。
// 存在チェックを所有権チェックより先に行う。
func (s *Service) UpdateCompletion(ctx context.Context, userID, todoID string, completed bool) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	if err := s.todoRepo.UpdateCompleted(ctx, todoID, completed); err != nil {
		return nil, fmt.Errorf("完了状態の更新に失敗しました: %w", err)
	}

	todo.Completed = completed
	return todo, nil
}

// Delete はTodoを削除する。
// Todoが存在しない場合はTODO_NOT_FOUND、
// 存在するが他ユーザーの所有の場合はFORBIDDENエラーを返す。
func (s *Service) Delete(ctx context.Context, userID, todoID string) error {
	if _, err := s.findOwned(ctx, userID, todoID); err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByID(ctx, todoID); err != nil {
		return fmt.Errorf("Todoの削除に失敗しました: %w", err)
	}

	return nil
}

// findOwned はTodoを取得し、存在と所有権を順に検証する。
func (s *Service) findOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	if todo.UserID != userID {
		return nil, model.NewForbiddenError()
	}
	return todo, nil
}
