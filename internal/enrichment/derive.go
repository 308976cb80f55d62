// Package enrichment は記事本文から要約・読了時間・SEOキーワード・タグ候補・
// タイトル候補・モデレーション判定を導出する。
// 要約以外はすべて本文のみから決まる決定的な純関数である。
package enrichment

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// wordsPerMinute は読了時間算出に使う1分あたりの単語数。
	wordsPerMinute = 200
	// summarySentences は要約に含める文の数。
	summarySentences = 3
	// maxKeywords はSEOキーワードの最大件数。
	maxKeywords = 10
	// maxSuggestedTags はタグ候補の最大件数。
	maxSuggestedTags = 5
	// titleWords はタイトル候補に使う先頭単語数。
	titleWords = 5
)

var keywordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// DeriveSummary は本文を ". " で区切った先頭3文を連結して要約とする。
// ちょうど3文を取り出した場合は末尾にピリオドを補う（既にある場合は補わない）。
// 3文未満の場合は補わずにそのまま返す。
func DeriveSummary(text string) string {
	segments := strings.Split(text, ". ")
	if len(segments) > summarySentences {
		segments = segments[:summarySentences]
	}

	summary := strings.Join(segments, ". ")
	if len(segments) == summarySentences && !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}

// DeriveReadTime は本文の単語数から読了時間（分）を算出する。最小値は1。
func DeriveReadTime(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// DeriveKeywords は4文字以上の単語の出現頻度上位10件を返す。
// 同頻度の場合は本文中で先に現れた単語を優先する。
func DeriveKeywords(text string) []string {
	tokens := keywordPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// SuggestTags は語彙中のタグのうち本文に含まれるもの（大文字小文字を区別しない部分一致）を
// 語彙の順序で最大5件返す。
func SuggestTags(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	tags := make([]string, 0, maxSuggestedTags)
	for _, tag := range vocabulary {
		if strings.Contains(lower, strings.ToLower(tag)) {
			tags = append(tags, tag)
			if len(tags) == maxSuggestedTags {
				break
			}
		}
	}
	return tags
}

// SuggestTitles は本文の先頭5単語からタイトル候補を4件生成する。
func SuggestTitles(text string, year int) []string {
	words := strings.Fields(text)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	head := strings.Join(words, " ")

	return []string{
		fmt.Sprintf("%s: A Complete Guide", head),
		fmt.Sprintf("Master %s in %d", head, year),
		fmt.Sprintf("Everything You Need to Know About %s", head),
		fmt.Sprintf("%s: Best Practices and Tips", head),
	}
}

// Verdict はモデレーション判定結果を表す。
type Verdict struct {
	Appropriate bool     `json:"isAppropriate"`
	Flags       []string `json:"flags"`
}

// Moderate は禁止語（大文字小文字を区別しない部分一致）の有無を判定する。
// Flagsは禁止語リストの順序で並ぶ。
func Moderate(text string, terms []string) Verdict {
	lower := strings.ToLower(text)
	flags := make([]string, 0)
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			flags = append(flags, term)
		}
	}
	return Verdict{
		Appropriate: len(flags) == 0,
		Flags:       flags,
	}
}
