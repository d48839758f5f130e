package rag

import (
	"strings"
	"unicode"
)

type Piece struct {
	Text  string
	Index int
}

type ChunkerConfig struct {
	MaxChars     int
	OverlapChars int
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxChars:     800,
		OverlapChars: 100,
	}
}

// SplitText splits text into overlapping pieces. Every piece is at most
// MaxChars long (counted in runes), consecutive pieces share roughly
// OverlapChars of trailing sentence context, and boundaries land on sentence
// or paragraph breaks whenever a sentence fits; only a single sentence longer
// than MaxChars gets hard-sliced.
func SplitText(text string, cfg ChunkerConfig) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var pieces []Piece
	var current strings.Builder
	currentLen := 0
	index := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		pieces = append(pieces, Piece{
			Text:  strings.TrimSpace(current.String()),
			Index: index,
		})
		index++
		current.Reset()
		currentLen = 0
	}

	for i, sentence := range sentences {
		sentLen := runeLen(sentence)

		// A sentence that cannot fit on its own gets hard-sliced.
		if sentLen > cfg.MaxChars {
			flush()
			for _, slice := range sliceLongSentence(sentence, cfg.MaxChars) {
				pieces = append(pieces, Piece{Text: slice, Index: index})
				index++
			}
			continue
		}

		if currentLen > 0 && currentLen+1+sentLen > cfg.MaxChars {
			flush()

			// Seed the next piece with trailing sentences of the previous
			// one, unless the overlap would crowd out the sentence itself.
			overlap := overlapTail(sentences, i, cfg.OverlapChars)
			if overlap != "" && runeLen(overlap)+1+sentLen <= cfg.MaxChars {
				current.WriteString(overlap)
				currentLen = runeLen(overlap)
			}
		}

		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += sentLen
	}

	flush()
	return pieces
}

// overlapTail collects whole sentences preceding sentences[idx], newest
// last, without exceeding maxChars.
func overlapTail(sentences []string, idx, maxChars int) string {
	if idx == 0 || maxChars <= 0 {
		return ""
	}

	var tail []string
	total := 0
	for i := idx - 1; i >= 0; i-- {
		n := runeLen(sentences[i])
		if total+n > maxChars {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		total += n + 1
	}
	return strings.Join(tail, " ")
}

func sliceLongSentence(sentence string, maxChars int) []string {
	runes := []rune(sentence)
	var slices []string
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		slices = append(slices, strings.TrimSpace(string(runes[start:end])))
	}
	return slices
}

// splitSentences breaks text into sentences, paragraph-first, using Unicode
// sentence enders. Soft line wraps inside a paragraph collapse to spaces.
func splitSentences(text string) []string {
	paragraphs := splitParagraphs(text)

	enders := map[rune]bool{
		'.': true, '!': true, '?': true,
		'。': true, '！': true, '？': true, '…': true,
	}

	var sentences []string
	for _, para := range paragraphs {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)

			if enders[r] {
				if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
					if s := strings.TrimSpace(current.String()); s != "" {
						sentences = append(sentences, s)
					}
					current.Reset()
				}
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")

	var result []string
	for _, p := range parts {
		p = strings.ReplaceAll(p, "\n", " ")
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}
