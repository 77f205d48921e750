// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はTodoの説明文をサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// HTMLタグおよびスクリプトを全て除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストコンテンツのサニタイズ機能のインターフェースを定義する。
// Todoの説明文の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力テキストをサニタイズしてプレーンテキストを返す。
	// HTMLタグ（script, iframe, img等）およびon*イベント属性を全て除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// Todoの説明文はプレーンテキストとして扱うため、
// HTMLタグを一切許可しないStrictPolicyを使用する。
// script, iframe, style等のタグとon*イベント属性は全て除去される。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストをサニタイズしてプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
