// Package deck loads case-study decks: named sections, each with an ordered
// list of image or text slides that one carousel cycles through.
//
// Decks are TOML or YAML files:
//
//	title = "Case studies"
//
//	[[sections]]
//	name = "onboarding"
//	title = "Onboarding redesign"
//	interval_ms = 4000
//	aspect = "landscape"
//
//	[[sections.slides]]
//	image = "img/onboarding-1.png"
//	caption = "Before"
//
//	[[sections.slides]]
//	text = "Fewer steps, same data."
//	caption = "After"
package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/carousel"
)

// ErrUnknownSection is returned by Find.
var ErrUnknownSection = errors.New("unknown section")

// Format is a deck file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported deck format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Slide is one carousel item. Exactly one of Image and Text is set.
type Slide struct {
	Image   string `toml:"image,omitempty" yaml:"image,omitempty"`
	Text    string `toml:"text,omitempty" yaml:"text,omitempty"`
	Caption string `toml:"caption" yaml:"caption"`
}

// Section is one embedded carousel.
type Section struct {
	Name       string  `toml:"name" yaml:"name"`
	Title      string  `toml:"title" yaml:"title"`
	IntervalMS int     `toml:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	Aspect     string  `toml:"aspect,omitempty" yaml:"aspect,omitempty"`
	Slides     []Slide `toml:"slides" yaml:"slides"`
}

// Interval returns the auto-advance cadence; zero means the carousel default.
func (s Section) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// Heading returns the title, falling back to the name.
func (s Section) Heading() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// Deck is a parsed deck file.
type Deck struct {
	Title    string    `toml:"title" yaml:"title"`
	Sections []Section `toml:"sections" yaml:"sections"`

	path string
}

// Path returns the file the deck was loaded from, if any.
func (d *Deck) Path() string { return d.path }

// Load reads, parses and validates a deck file. Relative image paths are
// resolved against the deck's directory.
func Load(path string) (*Deck, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	d, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	d.resolve(filepath.Dir(path))

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes deck data without validating it.
func Parse(data []byte, format Format) (*Deck, error) {
	var d Deck
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse deck: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse deck: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported deck format %q", format)
	}
	return &d, nil
}

func (d *Deck) resolve(dir string) {
	for i := range d.Sections {
		for j := range d.Sections[i].Slides {
			slide := &d.Sections[i].Slides[j]
			if slide.Image != "" && !filepath.IsAbs(slide.Image) {
				slide.Image = filepath.Join(dir, slide.Image)
			}
		}
	}
}

// Validate reports every problem in the deck at once.
func (d *Deck) Validate() error {
	if len(d.Sections) == 0 {
		return errors.New("deck has no sections")
	}

	var errs []error
	seen := make(map[string]bool, len(d.Sections))
	for i, s := range d.Sections {
		where := fmt.Sprintf("section %d", i+1)
		if s.Name != "" {
			where = fmt.Sprintf("section %q", s.Name)
		}

		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("%s: missing name", where))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("%s: duplicate name", where))
		}
		seen[s.Name] = true

		if s.IntervalMS < 0 {
			errs = append(errs, fmt.Errorf("%s: negative interval_ms %d", where, s.IntervalMS))
		}
		if _, err := carousel.ParseAspect(s.Aspect); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		if len(s.Slides) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", where, carousel.ErrNoItems))
		}
		for j, slide := range s.Slides {
			if (slide.Image == "") == (slide.Text == "") {
				errs = append(errs, fmt.Errorf("%s slide %d: exactly one of image or text is required", where, j+1))
			}
		}
	}
	return errors.Join(errs...)
}

// Names lists section names in deck order.
func (d *Deck) Names() []string {
	names := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		names[i] = s.Name
	}
	return names
}

// Find returns the named section. Unknown names get a suggestion when one
// is close enough.
func (d *Deck) Find(name string) (Section, error) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, nil
		}
	}

	if best := d.closest(name); best != "" {
		return Section{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownSection, name, best)
	}
	return Section{}, fmt.Errorf("%w %q (have %s)", ErrUnknownSection, name, strings.Join(d.Names(), ", "))
}

func (d *Deck) closest(name string) string {
	best, bestDist := "", -1
	for _, s := range d.Sections {
		dist := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(s.Name))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = s.Name, dist
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
