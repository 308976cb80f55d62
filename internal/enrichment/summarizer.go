package enrichment

import (
	"context"
	"time"
)

// Summarizer は要約を生成する。外部モデル呼び出しを想定した待機点であり、
// 呼び出し側はコンテキストのキャンセルで中断できる。
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SimulatedSummarizer は固定の遅延を挟んでDeriveSummaryを返す。
type SimulatedSummarizer struct {
	Delay time.Duration
}

// Summarize はDelayだけ待機してから要約を返す。待機中にctxが終了した場合はctx.Err()を返す。
func (s SimulatedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return DeriveSummary(text), nil
}

// InstantSummarizer は待機せずに要約を返す。
type InstantSummarizer struct{}

// Summarize は即座にDeriveSummaryの結果を返す。
func (InstantSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return DeriveSummary(text), nil
}
