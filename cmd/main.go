// road-survey обрабатывает пакеты снимков дорожного покрытия: находит повреждения,
// раскладывает снимки и строит JSON- и HTML-отчёты.
//
// Usage:
//
//	road-survey survey <folder> [--name=<flight>] [--output=<dir>] [--confidence=0.3] [--format=both]
//	road-survey serve [--addr=:8080]
//	road-survey bot
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
