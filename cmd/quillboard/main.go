// Command quillboard は記事投稿・モデレーション・ランキングのAPIサーバーを起動する。
//
// サブコマンド: serve（デフォルト）、worker、migrate、healthcheck
package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/quillboard/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
