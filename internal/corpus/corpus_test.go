package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestDefaultCorpus(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, EmbeddedSource, c.Source)
	require.Len(t, c.Base, 16)
	for i, s := range c.Base {
		assert.Equal(t, i+1, s.ID)
	}
	assert.Len(t, c.PathA, 7)
	assert.Equal(t, 1, c.PathA[0].ID)
	assert.Equal(t, 8, c.PathB[0].ID)
	assert.Equal(t, c.PathA, c.ForPath(model.PathNone))
	assert.Equal(t, c.PathC, c.ForPath(model.PathC))

	require.NotEmpty(t, c.Garbled)
	for _, g := range c.Garbled {
		assert.NotEmpty(t, g.Original)
		for _, word := range []string{"court", "committee", "community", "federation", "bill"} {
			assert.NotContains(t, strings.ToLower(g.Text), " "+word+" ", "sentence %d still shows %q", g.ID, word)
		}
	}
	assert.Equal(t, "The Ћ returned the ħ to the ৩ with a note from the ₹.", c.Garbled[0].Text)
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.toml")
	data := `symbols = ["#", "%"]
[paths]
a = [1]
b = [2]
c = [1, 2]
[[base]]
id = 1
text = "one"
[[base]]
id = 2
text = "two"
[[garbled]]
id = 1
original = "the court rules"
keywords = ["court"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Source)
	require.Len(t, c.Garbled, 1)
	assert.Contains(t, []string{"the # rules", "the % rules"}, c.Garbled[0].Text)
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EmbeddedSource, c.Source)
}

func TestValidateRejectsBrokenCorpus(t *testing.T) {
	base := []model.Sentence{{ID: 1, Text: "one"}, {ID: 1, Text: "again"}}
	c := &Corpus{Base: base, PathA: base, PathB: base, PathC: base, Garbled: base}
	assert.ErrorContains(t, c.Validate(), "duplicate")

	c.Base = []model.Sentence{{ID: 1, Text: "one"}}
	assert.ErrorContains(t, c.Validate(), "at least 2")

	c.Base = []model.Sentence{{ID: 1, Text: "one"}, {ID: 2, Text: "two"}}
	c.PathB = nil
	assert.ErrorContains(t, c.Validate(), "path b")
}

func TestLoadUnknownPathReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.toml")
	data := "[paths]\na = [9]\n[[base]]\nid = 1\ntext = \"one\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown sentence 9")
}
