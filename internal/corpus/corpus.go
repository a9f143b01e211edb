package corpus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var embeddedCorpus []byte

// idNamespace scopes factlet ids so they are stable across builds and
// surfaces.
var idNamespace = uuid.MustParse("5b0f3c0e-6a52-4d8e-9f0e-6b7f4c1d2a90")

// Factlet is a single short fact. Values are never mutated after load.
type Factlet struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Level    Level    `json:"level"`
}

// FactletID derives the stable id of a factlet from its category and text.
func FactletID(cat Category, text string) string {
	return uuid.NewSHA1(idNamespace, []byte(string(cat)+"\x00"+text)).String()
}

// Corpus is an ordered, immutable collection of factlets.
type Corpus struct {
	factlets []Factlet
	byID     map[string]int
}

type rawFactlet struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
	Level    string `yaml:"level"`
}

type rawCorpus struct {
	Factlets []rawFactlet `yaml:"factlets"`
}

// Load parses and validates a YAML corpus.
func Load(data []byte) (*Corpus, error) {
	var raw rawCorpus
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	if len(raw.Factlets) == 0 {
		return nil, errors.New("corpus has no factlets")
	}

	c := &Corpus{
		factlets: make([]Factlet, 0, len(raw.Factlets)),
		byID:     make(map[string]int, len(raw.Factlets)),
	}
	for i, r := range raw.Factlets {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			return nil, fmt.Errorf("factlet %d: text is required", i)
		}
		cat, err := ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("factlet %d: %w", i, err)
		}
		if cat == All {
			return nil, fmt.Errorf("factlet %d: category must be concrete, got %q", i, r.Category)
		}
		lvl, err := ParseLevel(r.Level)
		if err != nil {
			return nil, fmt.Errorf("factlet %d: %w", i, err)
		}
		f := Factlet{ID: FactletID(cat, text), Text: text, Category: cat, Level: lvl}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("factlet %d: duplicate of an earlier %s factlet", i, cat)
		}
		c.byID[f.ID] = len(c.factlets)
		c.factlets = append(c.factlets, f)
	}
	return c, nil
}

// LoadFile reads a corpus from disk.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return Load(data)
}

var (
	defaultOnce   sync.Once
	defaultCorpus *Corpus
)

// Default returns the corpus compiled into the binary.
func Default() *Corpus {
	defaultOnce.Do(func() {
		c, err := Load(embeddedCorpus)
		if err != nil {
			panic("embedded corpus: " + err.Error())
		}
		defaultCorpus = c
	})
	return defaultCorpus
}

// All returns the factlets in corpus order. The slice is shared and must not
// be modified.
func (c *Corpus) All() []Factlet { return c.factlets }

func (c *Corpus) Len() int { return len(c.factlets) }

func (c *Corpus) ByID(id string) (Factlet, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Factlet{}, false
	}
	return c.factlets[i], true
}

// Count returns how many factlets match the category and level set.
func (c *Corpus) Count(cat Category, levels LevelSet) int {
	n := 0
	for _, f := range c.factlets {
		if (cat == All || f.Category == cat) && levels.Has(f.Level) {
			n++
		}
	}
	return n
}
