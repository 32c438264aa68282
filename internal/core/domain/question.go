package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Question is a single extracted question as displayed inside a group.
type Question struct {
	Text      string   `json:"text"`
	Frequency int      `json:"frequency"`
	Variants  []string `json:"variants,omitempty"`
}

// Annotation is the frequency label shown next to the question.
func (q Question) Annotation() string {
	return fmt.Sprintf("(Asked %d times)", q.Frequency)
}

// Ordinal parses the leading question number, i.e. the characters before the
// first '.', e.g. "12. Define entropy" -> 12.
func (q Question) Ordinal() (int, bool) {
	return ParseOrdinal(q.Text)
}

func ParseOrdinal(text string) (int, bool) {
	prefix, _, found := strings.Cut(text, ".")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SortByOrdinal returns a copy of questions ordered by numeric ordinal.
// Questions without a parsable ordinal keep their exact position; the
// numbered ones are sorted stably among the remaining slots.
func SortByOrdinal(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)

	slots := make([]int, 0, len(out))
	numbered := make([]Question, 0, len(out))
	for i, q := range out {
		if _, ok := q.Ordinal(); ok {
			slots = append(slots, i)
			numbered = append(numbered, q)
		}
	}
	sort.SliceStable(numbered, func(i, j int) bool {
		a, _ := numbered[i].Ordinal()
		b, _ := numbered[j].Ordinal()
		return a < b
	})
	for i, slot := range slots {
		out[slot] = numbered[i]
	}
	return out
}

// NormalizeQuestion converts one loosely shaped wire entry into a Question.
// Accepted shapes are a bare string, [text, frequency] and
// [text, frequency, [variants...]]. Entries without text are rejected.
func NormalizeQuestion(raw any) (Question, bool) {
	switch v := raw.(type) {
	case string:
		return newQuestion(v, 1, nil)
	case []any:
		if len(v) == 0 {
			return Question{}, false
		}
		text, ok := v[0].(string)
		if !ok {
			return Question{}, false
		}
		freq := 1
		if len(v) > 1 {
			freq = toFrequency(v[1])
		}
		var variants []string
		if len(v) > 2 {
			if list, ok := v[2].([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
						variants = append(variants, s)
					}
				}
			}
		}
		return newQuestion(text, freq, variants)
	case map[string]any:
		text, _ := v["text"].(string)
		return newQuestion(text, toFrequency(v["frequency"]), nil)
	default:
		return Question{}, false
	}
}

func newQuestion(text string, freq int, variants []string) (Question, bool) {
	if strings.TrimSpace(text) == "" {
		return Question{}, false
	}
	if freq < 1 {
		freq = 1
	}
	return Question{Text: text, Frequency: freq, Variants: variants}, true
}

func toFrequency(raw any) int {
	switch n := raw.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 1
		}
		return parsed
	default:
		return 1
	}
}
