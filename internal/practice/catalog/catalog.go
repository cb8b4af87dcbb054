package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const catalogPathEnv = "EXERCISE_CATALOG_YAML"

//go:embed exercises.yaml
var catalogFS embed.FS

type yamlCatalog struct {
	Exercises []practice.Exercise `yaml:"exercises"`
}

// Catalog is the read-only exercise library. It is never mutated after Parse.
type Catalog struct {
	all        []practice.Exercise
	byID       map[string]int
	byCategory map[practice.ExerciseCategory][]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		raw, err := catalogFS.ReadFile("exercises.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("read embedded catalog: %w", err)
			return
		}
		defaultCat, defaultErr = Parse(raw)
	})
	return defaultCat, defaultErr
}

// Load prefers the file named by EXERCISE_CATALOG_YAML and falls back to the
// embedded catalog when it is unset or invalid.
func Load(log *logger.Logger) (*Catalog, error) {
	path := strings.TrimSpace(os.Getenv(catalogPathEnv))
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			c, perr := Parse(raw)
			if perr == nil {
				if log != nil {
					log.Info("Loaded exercise catalog", "path", path, "exercises", c.Len())
				}
				return c, nil
			}
			err = perr
		}
		if log != nil {
			log.Warn("Exercise catalog override unusable, using embedded catalog", "path", path, "error", err)
		}
	}
	return Default()
}

func Parse(raw []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Exercises)
}

func New(exercises []practice.Exercise) (*Catalog, error) {
	c := &Catalog{
		all:        make([]practice.Exercise, 0, len(exercises)),
		byID:       make(map[string]int, len(exercises)),
		byCategory: make(map[practice.ExerciseCategory][]int),
	}
	var errs []error
	for _, ex := range exercises {
		ex.ID = strings.TrimSpace(ex.ID)
		switch {
		case ex.ID == "":
			errs = append(errs, fmt.Errorf("exercise %q: missing id", ex.Name))
			continue
		case !ex.Category.Valid():
			errs = append(errs, fmt.Errorf("exercise %s: unknown category %q", ex.ID, ex.Category))
			continue
		case ex.DefaultDuration <= 0:
			errs = append(errs, fmt.Errorf("exercise %s: default duration must be positive", ex.ID))
			continue
		}
		if _, dup := c.byID[ex.ID]; dup {
			errs = append(errs, fmt.Errorf("exercise %s: duplicate id", ex.ID))
			continue
		}
		idx := len(c.all)
		c.all = append(c.all, ex)
		c.byID[ex.ID] = idx
		c.byCategory[ex.Category] = append(c.byCategory[ex.Category], idx)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.all)
}

func (c *Catalog) All() []practice.Exercise {
	if c == nil {
		return nil
	}
	out := make([]practice.Exercise, len(c.all))
	copy(out, c.all)
	return out
}

func (c *Catalog) ByID(id string) (practice.Exercise, bool) {
	if c == nil {
		return practice.Exercise{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return practice.Exercise{}, false
	}
	return c.all[idx], true
}

func (c *Catalog) ByCategory(cat practice.ExerciseCategory) []practice.Exercise {
	if c == nil {
		return nil
	}
	idxs := c.byCategory[cat]
	out := make([]practice.Exercise, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.all[i])
	}
	return out
}

// Categories lists the categories that have at least one exercise, in the
// fixed display order.
func (c *Catalog) Categories() []practice.ExerciseCategory {
	var out []practice.ExerciseCategory
	for _, cat := range practice.ExerciseCategories() {
		if c != nil && len(c.byCategory[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}
