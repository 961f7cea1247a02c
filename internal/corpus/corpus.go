// Package corpus loads the training sentences.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuiread/internal/generator"
	"github.com/verte-zerg/tuiread/internal/model"
)

//go:embed default.toml
var defaultCorpus string

// EmbeddedSource is the Source of the built-in corpus.
const EmbeddedSource = "embedded"

// garbleSeed keeps generated symbols stable between runs.
const garbleSeed = 1

// Corpus is the immutable sentence data of a training run.
type Corpus struct {
	Source  string
	Base    []model.Sentence
	PathA   []model.Sentence
	PathB   []model.Sentence
	PathC   []model.Sentence
	Garbled []model.Sentence
	Symbols []string
	Legend  map[string]string
}

type fileCorpus struct {
	Symbols []string          `toml:"symbols"`
	Legend  map[string]string `toml:"legend"`
	Paths   struct {
		A []int `toml:"a"`
		B []int `toml:"b"`
		C []int `toml:"c"`
	} `toml:"paths"`
	Base    []model.Sentence `toml:"base"`
	Garbled []garbledEntry   `toml:"garbled"`
}

type garbledEntry struct {
	ID       int      `toml:"id"`
	Text     string   `toml:"text"`
	Original string   `toml:"original"`
	Keywords []string `toml:"keywords"`
}

// Default returns the built-in corpus.
func Default() (*Corpus, error) {
	var raw fileCorpus
	if _, err := toml.Decode(defaultCorpus, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode embedded corpus: %w", err)
	}
	return build(raw, EmbeddedSource)
}

// Load reads a corpus file. An empty path selects the built-in corpus.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Default()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat corpus: %w", err)
	}
	var raw fileCorpus
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}
	return build(raw, path)
}

func build(raw fileCorpus, source string) (*Corpus, error) {
	legend := map[string]string{}
	for k, v := range raw.Legend {
		legend[strings.ToLower(k)] = v
	}
	c := &Corpus{
		Source:  source,
		Base:    raw.Base,
		Symbols: raw.Symbols,
		Legend:  legend,
	}
	byID := make(map[int]model.Sentence, len(raw.Base))
	for _, s := range raw.Base {
		byID[s.ID] = s
	}
	var err error
	if c.PathA, err = resolve("a", raw.Paths.A, byID); err != nil {
		return nil, err
	}
	if c.PathB, err = resolve("b", raw.Paths.B, byID); err != nil {
		return nil, err
	}
	if c.PathC, err = resolve("c", raw.Paths.C, byID); err != nil {
		return nil, err
	}

	gen := generator.NewSeeded(garbleSeed)
	for _, g := range raw.Garbled {
		text := g.Text
		if text == "" && g.Original != "" {
			text, err = gen.Garble(g.Original, g.Keywords, legend, raw.Symbols)
			if err != nil {
				return nil, fmt.Errorf("garbled sentence %d: %w", g.ID, err)
			}
		}
		c.Garbled = append(c.Garbled, model.Sentence{ID: g.ID, Text: text, Original: g.Original})
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func resolve(name string, ids []int, byID map[int]model.Sentence) ([]model.Sentence, error) {
	out := make([]model.Sentence, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("path %s references unknown sentence %d", name, id)
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate checks the invariants the training steps rely on.
func (c *Corpus) Validate() error {
	if len(c.Base) < 2 {
		return fmt.Errorf("corpus needs at least 2 base sentences, got %d", len(c.Base))
	}
	seen := map[int]struct{}{}
	for _, s := range c.Base {
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate base sentence id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("base sentence %d has no text", s.ID)
		}
	}
	for name, set := range map[string][]model.Sentence{"a": c.PathA, "b": c.PathB, "c": c.PathC} {
		if len(set) == 0 {
			return fmt.Errorf("path %s has no sentences", name)
		}
	}
	if len(c.Garbled) == 0 {
		return fmt.Errorf("corpus has no garbled sentences")
	}
	for _, s := range c.Garbled {
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("garbled sentence %d has no text", s.ID)
		}
	}
	return nil
}

// ForPath returns the drill sentences of a path. No path falls back to A.
func (c *Corpus) ForPath(p model.Path) []model.Sentence {
	switch p {
	case model.PathB:
		return c.PathB
	case model.PathC:
		return c.PathC
	default:
		return c.PathA
	}
}

// Sentence returns the base sentence with the given id.
func (c *Corpus) Sentence(id int) (model.Sentence, bool) {
	for _, s := range c.Base {
		if s.ID == id {
			return s, true
		}
	}
	return model.Sentence{}, false
}
