package security

import (
	"strings"
	"testing"
)

// ContentSanitizerServiceインターフェースを満たすことを検証
func TestContentSanitizer_ImplementsInterface(t *testing.T) {
	var _ ContentSanitizerService = (*contentSanitizer)(nil)
}

// TestSanitize_PlainTextPassthrough はプレーンテキストがそのまま通過することを検証する。
func TestSanitize_PlainTextPassthrough(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "日本語テキストがそのまま通過する",
			input: "牛乳を買う",
			want:  "牛乳を買う",
		},
		{
			name:  "英語テキストがそのまま通過する",
			input: "Finish the quarterly report",
			want:  "Finish the quarterly report",
		},
		{
			name:  "空文字列は空文字列を返す",
			input: "",
			want:  "",
		},
		{
			name:  "数字と記号を含むテキストが通過する",
			input: "会議 14:00 @会議室A",
			want:  "会議 14:00 @会議室A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_RemovesDangerousContent は危険なタグと属性が除去されることを検証する。
func TestSanitize_RemovesDangerousContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		// 出力に含まれてはならない部分文字列
		wantNotContains []string
	}{
		{
			name:            "scriptタグが除去される",
			input:           `説明<script>alert('xss')</script>文`,
			wantNotContains: []string{"<script", "alert"},
		},
		{
			name:            "iframeタグが除去される",
			input:           `<iframe src="https://evil.example.com"></iframe>説明`,
			wantNotContains: []string{"<iframe", "evil.example.com"},
		},
		{
			name:            "imgタグのonerror属性が除去される",
			input:           `<img src="x" onerror="alert(1)">説明`,
			wantNotContains: []string{"<img", "onerror"},
		},
		{
			name:            "styleタグが除去される",
			input:           `<style>body { display: none; }</style>説明`,
			wantNotContains: []string{"<style", "display"},
		},
		{
			name:            "aタグが除去されテキストのみ残る",
			input:           `<a href="javascript:alert(1)">クリック</a>`,
			wantNotContains: []string{"<a", "javascript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(got, notWant) {
					t.Errorf("Sanitize(%q) = %q, expected not to contain %q", tt.input, got, notWant)
				}
			}
		})
	}
}

// TestSanitize_KeepsInnerText はタグ除去後も中身のテキストが保持されることを検証する。
func TestSanitize_KeepsInnerText(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.Sanitize("<p>買い物リスト</p>")
	if got != "買い物リスト" {
		t.Errorf("Sanitize() = %q, want %q", got, "買い物リスト")
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	input := `<script>alert(1)</script>洗濯物を取り込む`
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("Sanitize is not idempotent: first = %q, second = %q", first, second)
	}
}
