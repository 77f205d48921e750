// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// プロフィール情報は初回ログイン時にOAuthプロバイダーから取得した値を保持し、
// 以降このシステムからは更新しない（first-write-wins）。
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// (provider, provider_user_id) の組の一意性はDB側のユニーク制約で保証する。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}
