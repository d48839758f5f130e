package rag

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		cfg      ChunkerConfig
		expected []string
	}{
		{
			name:     "empty input",
			text:     "",
			cfg:      DefaultChunkerConfig(),
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     "   \n\t   ",
			cfg:      DefaultChunkerConfig(),
			expected: nil,
		},
		{
			name:     "single sentence fits",
			text:     "Hello world.",
			cfg:      ChunkerConfig{MaxChars: 50, OverlapChars: 0},
			expected: []string{"Hello world."},
		},
		{
			name:     "two sentences fit in one piece",
			text:     "Hello world. How are you?",
			cfg:      ChunkerConfig{MaxChars: 50, OverlapChars: 0},
			expected: []string{"Hello world. How are you?"},
		},
		{
			name: "split on sentence boundary without overlap",
			text: "First sentence here. Second sentence here.",
			cfg:  ChunkerConfig{MaxChars: 25, OverlapChars: 0},
			expected: []string{
				"First sentence here.",
				"Second sentence here.",
			},
		},
		{
			name: "split with sentence overlap",
			text: "Sentence one. Sentence two. Sentence three.",
			cfg:  ChunkerConfig{MaxChars: 30, OverlapChars: 14},
			expected: []string{
				"Sentence one. Sentence two.",
				"Sentence two. Sentence three.",
			},
		},
		{
			name: "oversized sentence is hard-sliced",
			text: "abcdefghij",
			cfg:  ChunkerConfig{MaxChars: 4, OverlapChars: 0},
			expected: []string{
				"abcd",
				"efgh",
				"ij",
			},
		},
		{
			name: "paragraph breaks collapse soft wraps",
			text: "Para one\nstill para one.\n\nPara two.",
			cfg:  ChunkerConfig{MaxChars: 100, OverlapChars: 0},
			expected: []string{
				"Para one still para one. Para two.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := SplitText(tt.text, tt.cfg)

			if len(pieces) != len(tt.expected) {
				t.Fatalf("expected %d pieces, got %d: %v", len(tt.expected), len(pieces), pieces)
			}
			for i, p := range pieces {
				if p.Text != tt.expected[i] {
					t.Errorf("piece %d mismatch.\nexpected: %q\ngot:      %q", i, tt.expected[i], p.Text)
				}
				if p.Index != i {
					t.Errorf("piece %d has index %d", i, p.Index)
				}
			}
		})
	}
}

func TestSplitTextBoundsAndOverlap(t *testing.T) {
	cfg := ChunkerConfig{MaxChars: 100, OverlapChars: 20}

	sentences := make([]string, 50)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Sentence number %d.", i)
	}
	text := strings.Join(sentences, " ")

	pieces := SplitText(text, cfg)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}

	for i, p := range pieces {
		if n := len([]rune(p.Text)); n > cfg.MaxChars {
			t.Errorf("piece %d exceeds max: %d chars", i, n)
		}
	}

	// Each piece starts with the trailing sentence of its predecessor.
	for i := 1; i < len(pieces); i++ {
		last := lastSentence(pieces[i-1].Text)
		if !strings.HasPrefix(pieces[i].Text, last) {
			t.Errorf("piece %d does not overlap with predecessor.\nwant prefix: %q\ngot: %q",
				i, last, pieces[i].Text)
		}
	}

	// De-overlapped pieces reconstruct the original text.
	rebuilt := pieces[0].Text
	for i := 1; i < len(pieces); i++ {
		rest := strings.TrimPrefix(pieces[i].Text, lastSentence(pieces[i-1].Text))
		rebuilt += rest
	}
	if rebuilt != text {
		t.Errorf("de-overlapped pieces do not reconstruct the input.\nwant: %q\ngot:  %q", text, rebuilt)
	}
}

func lastSentence(piece string) string {
	idx := strings.LastIndex(strings.TrimSuffix(piece, "."), ". ")
	if idx < 0 {
		return piece
	}
	return piece[idx+2:]
}

func TestSplitSentences(t *testing.T) {
	text := "Hello world. How are you? I am fine."
	got := splitSentences(text)

	expected := []string{
		"Hello world.",
		"How are you?",
		"I am fine.",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d sentences, got %d: %v", len(expected), len(got), got)
	}
	for i, s := range got {
		if s != expected[i] {
			t.Errorf("sentence %d: got %q, want %q", i, s, expected[i])
		}
	}
}

func TestSplitSentencesNoEnders(t *testing.T) {
	got := splitSentences("no punctuation at all")
	if len(got) != 1 || got[0] != "no punctuation at all" {
		t.Errorf("expected whole text as single sentence, got %v", got)
	}
}
