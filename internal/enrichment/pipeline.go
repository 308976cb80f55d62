package enrichment

import (
	"context"
	"fmt"
	"time"
)

// Enrichment は投稿時に導出される記事メタデータ。
type Enrichment struct {
	Summary  string
	ReadTime int
	Keywords []string
}

// Suggestions はエディタ補助で返す候補一式。
type Suggestions struct {
	Titles     []string `json:"titles"`
	Tags       []string `json:"tags"`
	Keywords   []string `json:"keywords"`
	Moderation Verdict  `json:"moderation"`
}

// Pipeline は語彙と要約器を保持し、導出処理をまとめて実行する。
type Pipeline struct {
	vocab      Vocabulary
	summarizer Summarizer
	now        func() time.Time
}

// Option はPipelineの設定を変更する。
type Option func(*Pipeline)

// WithClock はタイトル候補の年に使う時刻関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline はPipelineを生成する。summarizerがnilの場合はInstantSummarizerを使う。
func NewPipeline(vocab Vocabulary, summarizer Summarizer, opts ...Option) *Pipeline {
	if summarizer == nil {
		summarizer = InstantSummarizer{}
	}
	p := &Pipeline{
		vocab:      vocab,
		summarizer: summarizer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enrich は要約・読了時間・キーワードを導出する。要約の待機中にctxが終了した場合はエラーを返す。
func (p *Pipeline) Enrich(ctx context.Context, text string) (Enrichment, error) {
	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return Enrichment{}, fmt.Errorf("failed to summarize content: %w", err)
	}

	return Enrichment{
		Summary:  summary,
		ReadTime: DeriveReadTime(text),
		Keywords: DeriveKeywords(text),
	}, nil
}

// Moderate は語彙の禁止語で本文を判定する。
func (p *Pipeline) Moderate(text string) Verdict {
	return Moderate(text, p.vocab.DisallowedTerms)
}

// Suggest はタイトル・タグ・キーワード候補とモデレーション判定を返す。
func (p *Pipeline) Suggest(text string) Suggestions {
	return Suggestions{
		Titles:     SuggestTitles(text, p.now().Year()),
		Tags:       SuggestTags(text, p.vocab.Tags),
		Keywords:   DeriveKeywords(text),
		Moderation: p.Moderate(text),
	}
}
