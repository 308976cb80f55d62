package security

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements は前後に単語区切りを入れる要素。
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
}

// skippedElements は中身をテキストとして扱わない要素。
var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
}

// PlainText は本文HTMLからテキストノードだけを取り出す。
// 文字参照はデコードし、ブロック要素の境界には空白を1つ入れる。
// タグを含まない入力は前後の空白を除いてそのまま返る。
func (s *ContentSanitizer) PlainText(raw string) string {
	return ExtractText(raw)
}

// ExtractText はPlainTextと同じ規則で、保存済みの本文HTMLからテキストを取り出す。
func ExtractText(raw string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	skipDepth := 0

	separate := func() {
		if b.Len() == 0 {
			return
		}
		if last := b.String()[b.Len()-1]; last != ' ' && last != '\n' && last != '\t' {
			b.WriteByte(' ')
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOFを含め、読み取れた分だけを返す
			return strings.TrimSpace(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] {
				skipDepth++
			}
			if blockElements[a] {
				separate()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[a] {
				separate()
			}
		}
	}
}
