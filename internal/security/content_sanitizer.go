// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は投稿された記事・コメントのテキストをサニタイズする。
// 記事本文は許可リスト方式で安全なタグのみを残し、タイトル・タグ・コメントは
// タグを一切含まないテキストにする。
package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ContentSanitizerService は投稿テキストのサニタイズ機能のインターフェース。
// 同一入力に対して常に同一出力を返す。
type ContentSanitizerService interface {
	// SanitizeContent は記事本文をサニタイズする。
	// p, br, a, ul, ol, li, blockquote, pre, code, strong, em, h2, h3, img のみを通過させる。
	SanitizeContent(raw string) string
	// SanitizeText はHTMLタグをすべて除去し、前後の空白を取り除く。
	// 戻り値はエスケープされていない素のテキスト。
	SanitizeText(raw string) string
	// PlainText は本文から導出処理に渡す素のテキストを取り出す。
	PlainText(raw string) string
}

// ContentSanitizer はbluemondayのポリシーを保持するContentSanitizerServiceの実装。
type ContentSanitizer struct {
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerを生成する。
// imgのsrcはhttpsのみ許可し、外部リンクにはtarget="_blank"とrel="noopener noreferrer"を付与する。
func NewContentSanitizer() *ContentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "h2", "h3",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(*url.URL) bool { return true })

	return &ContentSanitizer{
		rich:   p,
		strict: bluemonday.StrictPolicy(),
	}
}

// SanitizeContent は記事本文をサニタイズする。
func (s *ContentSanitizer) SanitizeContent(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// SanitizeText はHTMLタグをすべて除去する。
// StrictPolicyの出力は文字参照にエスケープされるため、デコードしてから返す。
func (s *ContentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}

// compile-time interface check
var _ ContentSanitizerService = (*ContentSanitizer)(nil)
