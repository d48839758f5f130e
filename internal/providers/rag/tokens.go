package rag

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// CountTokens estimates the token cost of text for context budgeting. It
// uses the cl100k_base encoding when available and falls back to a bytes/4
// heuristic when the encoding cannot be loaded (e.g. offline).
func CountTokens(text string) int {
	if text == "" {
		return 0
	}

	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})

	if tk == nil {
		return len(text)/4 + 1
	}
	return len(tk.Encode(text, nil, nil))
}
