// Package generator builds garbled training text.
package generator

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Generator replaces keywords in sentences with opaque symbols.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Garble replaces every whole-word occurrence of each keyword, ignoring case
// and a plural suffix, with a symbol. Keywords found in legend use the legend
// symbol; the rest draw a symbol from symbols that is not used yet in this
// sentence. A keyword always maps to the same symbol within one sentence.
func (g *Generator) Garble(original string, keywords []string, legend map[string]string, symbols []string) (string, error) {
	used := map[string]struct{}{}
	assigned := map[string]string{}
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" {
			continue
		}
		if sym, ok := legend[key]; ok {
			assigned[key] = sym
			used[sym] = struct{}{}
		}
	}
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" {
			continue
		}
		if _, ok := assigned[key]; ok {
			continue
		}
		sym, err := g.pick(symbols, used)
		if err != nil {
			return "", fmt.Errorf("keyword %q: %w", kw, err)
		}
		assigned[key] = sym
		used[sym] = struct{}{}
	}

	out := original
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		sym, ok := assigned[key]
		if !ok {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `(?:es|s)?\b`)
		out = re.ReplaceAllLiteralString(out, sym)
	}
	return out, nil
}

func (g *Generator) pick(symbols []string, used map[string]struct{}) (string, error) {
	free := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := used[s]; !ok {
			free = append(free, s)
		}
	}
	if len(free) == 0 {
		return "", fmt.Errorf("no unused symbol left")
	}
	return free[g.rnd.Intn(len(free))], nil
}
