package suggest

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// WordsProvider completes the word under the caret from words appearing
// elsewhere in the buffer. It needs no network and answers deterministically,
// which makes it the demo and test provider.
type WordsProvider struct {
	// MinPrefix is the shortest prefix worth completing. Defaults to 2.
	MinPrefix int

	// MaxResults caps the recommendations. Defaults to 3.
	MaxResults int
}

// Fetch implements Provider.
func (p *WordsProvider) Fetch(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minPrefix := p.MinPrefix
	if minPrefix <= 0 {
		minPrefix = 2
	}
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	prefix := wordPrefix(req)
	if len(prefix) < minPrefix {
		return &Response{}, nil
	}

	// Count completions of the prefix across the buffer, skipping the
	// word being typed itself.
	counts := make(map[string]int)
	for _, line := range req.Lines {
		for _, w := range splitWords(line) {
			if w == prefix {
				continue
			}
			if strings.HasPrefix(w, prefix) {
				counts[w]++
			}
		}
	}
	if len(counts) == 0 {
		return &Response{}, nil
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	// Most frequent first; ties alphabetical so results are stable.
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	resp := &Response{Model: "words"}
	for _, w := range words {
		if len(resp.Recommendations) >= maxResults {
			break
		}
		resp.Recommendations = append(resp.Recommendations, Recommendation{
			Text: strings.TrimPrefix(w, prefix),
		})
	}
	return resp, nil
}

// wordPrefix extracts the word fragment immediately left of the caret.
func wordPrefix(req Request) string {
	if req.Line < 0 || req.Line >= len(req.Lines) {
		return ""
	}
	runes := []rune(req.Lines[req.Line])
	col := req.Col
	if col > len(runes) {
		col = len(runes)
	}
	start := col
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	return string(runes[start:col])
}

func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
