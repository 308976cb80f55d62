package enrichment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTags はタグ候補のデフォルト語彙。
var DefaultTags = []string{
	"JavaScript", "React", "Node.js", "Web Development", "Frontend",
	"Backend", "API", "Database", "CSS", "HTML",
}

// DefaultDisallowedTerms はモデレーションのデフォルト禁止語。
var DefaultDisallowedTerms = []string{"spam", "hate", "offensive"}

// Vocabulary はタグ候補語彙と禁止語リストを保持する。
type Vocabulary struct {
	Tags            []string `yaml:"tags"`
	DisallowedTerms []string `yaml:"disallowed_terms"`
}

// DefaultVocabulary はデフォルトの語彙を返す。
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Tags:            append([]string(nil), DefaultTags...),
		DisallowedTerms: append([]string(nil), DefaultDisallowedTerms...),
	}
}

// LoadVocabulary はYAMLファイルから語彙を読み込む。
// pathが空の場合はデフォルト語彙を返す。ファイル側で省略された項目はデフォルトで補う。
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary はYAMLのバイト列から語彙を生成する。
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	def := DefaultVocabulary()
	if len(v.Tags) == 0 {
		v.Tags = def.Tags
	}
	if len(v.DisallowedTerms) == 0 {
		v.DisallowedTerms = def.DisallowedTerms
	}
	return v, nil
}
