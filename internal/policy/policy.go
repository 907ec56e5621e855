// Package policy decides which product records are kept.
package policy

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/drstein77/organicfilter/internal/models"
	"gopkg.in/yaml.v3"
)

var defaultStores = []string{"hofer", "spar", "billa"}

var defaultKeep = []string{
	// fruits & vegetables
	"apfel", "banane", "birne", "orange", "zitrone", "traube", "erdbeere", "beere", "blaubeere",
	"tomate", "kartoffel", "zwiebel", "gurke", "paprika", "zucchini", "karotte",
	"kohl", "spinat", "salat", "broccoli", "blumenkohl", "aubergine", "champignon", "pilz",

	// dairy
	"milch", "butter", "käse", "yoghurt", "joghurt", "rahm", "quark", "topfen", "kefir", "schokolade",

	// meat & fish
	"huhn", "hähnchen", "rind", "schweine", "puten", "truthahn", "lachs", "forelle", "thunfisch",
	"fisch", "rindfleisch", "schnitzel",

	// eggs & legumes
	"ei", "eier", "linse", "bohne", "erbse", "kichererbse", "hummus",

	// grains & basics
	"reis", "hafer", "mais", "polenta", "quinoa", "buchweizen",
}

var defaultExclude = []string{
	"brot", "bröt", "weckerl", "baguette", "keks", "kuchen", "torte",
	"bier", "wein", "sekt", "prosecco", "schnaps",
	"chips", "cola", "limonade", "zucker", "süßigkeiten",
	"sauce", "dressing", "fertiggericht", "pizza", "lasagne",
	"pudding", "dessert", "eis", "marmelade",
}

// Policy holds the store allow-set and keyword lists. It is not modified
// after construction.
type Policy struct {
	stores  map[string]struct{}
	keep    []string
	exclude []string
}

// File is the YAML layout of a policy file. Omitted lists keep their defaults.
type File struct {
	Stores  []string `yaml:"stores"`
	Keep    []string `yaml:"keep"`
	Exclude []string `yaml:"exclude"`
}

// Default returns the built-in policy.
func Default() *Policy {
	p, _ := New(defaultStores, defaultKeep, defaultExclude)
	return p
}

// New builds a policy. Keywords are lower-cased; empty keywords and store ids
// are rejected.
func New(stores, keep, exclude []string) (*Policy, error) {
	p := &Policy{stores: make(map[string]struct{}, len(stores))}
	for _, s := range stores {
		if s == "" {
			return nil, fmt.Errorf("%w: empty store id", models.ErrInvalidConfig)
		}
		p.stores[s] = struct{}{}
	}

	var err error
	if p.keep, err = normalize("keep", keep); err != nil {
		return nil, err
	}
	if p.exclude, err = normalize("exclude", exclude); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads a YAML policy file on top of the defaults.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read policy file: %v", models.ErrInvalidConfig, err)
	}

	f := File{
		Stores:  defaultStores,
		Keep:    defaultKeep,
		Exclude: defaultExclude,
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse policy file: %v", models.ErrInvalidConfig, err)
	}

	return New(f.Stores, f.Keep, f.Exclude)
}

// Allows reports whether the record is organic, sold by an allowed store, and
// named with at least one keep keyword and no exclude keyword.
func (p *Policy) Allows(record models.ProductRecord) bool {
	if !record.Bio() {
		return false
	}
	if _, ok := p.stores[record.Store()]; !ok {
		return false
	}
	name := strings.ToLower(record.Name())
	if !containsAny(name, p.keep) {
		return false
	}
	return !containsAny(name, p.exclude)
}

// Stores returns the allowed store ids, sorted.
func (p *Policy) Stores() []string {
	out := make([]string, 0, len(p.stores))
	for s := range p.stores {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// containsAny uses plain substring matching: "reis" is excluded by "eis".
func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func normalize(list string, words []string) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if w == "" {
			return nil, fmt.Errorf("%w: empty %s keyword", models.ErrInvalidConfig, list)
		}
		out = append(out, w)
	}
	return out, nil
}
