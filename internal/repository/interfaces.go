// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/masaki/todoline/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// ユニーク制約違反はそのまま返す。競合判定はIsUniqueViolationで行うこと。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 完全一致で高々1件。見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// TodoRepository はTODOデータの永続化インターフェース。
// 所有権の判定はサービス層が行う。ここはID単位のCRUDのみを提供する。
type TodoRepository interface {
	// FindByID は指定IDのTODOを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)

	// ListByUserID は指定ユーザーのTODO一覧を作成順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// Create はTODOを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// UpdateCompleted は指定IDのTODOの完了状態を更新する。
	UpdateCompleted(ctx context.Context, id string, completed bool) error

	// DeleteByID は指定IDのTODOを削除する。
	DeleteByID(ctx context.Context, id string) error
}
