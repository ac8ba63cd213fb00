// Package catalog holds the static reference data shipped with the service: the
// achievement catalog, the era personas used for generation and the seed list of
// historical events.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Achievement struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Icon           string `yaml:"icon"`
	Category       string `yaml:"category"`
	Points         int    `yaml:"points"`
	ConditionType  string `yaml:"condition_type"`
	ConditionValue int    `yaml:"condition_value"`
}

type Persona struct {
	Era       string `yaml:"era"`
	Name      string `yaml:"name"`
	Character string `yaml:"character"`
	Setting   string `yaml:"setting"`
	Mood      string `yaml:"mood"`
	ImageURL  string `yaml:"image_url"`
}

type Event struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Era         string   `yaml:"era"`
	Importance  int      `yaml:"importance"`
	Tags        []string `yaml:"tags"`
}

type Catalog struct {
	Achievements []Achievement `yaml:"achievements"`
	Personas     []Persona     `yaml:"personas"`
	Events       []Event       `yaml:"events"`

	personasByEra map[string]Persona
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c.personasByEra = make(map[string]Persona, len(c.Personas))
	for _, p := range c.Personas {
		if p.Era == "" {
			return nil, fmt.Errorf("persona %q has no era", p.Name)
		}
		c.personasByEra[p.Era] = p
	}
	return &c, nil
}

// Persona returns the persona written for era, or a generic one for unknown eras.
func (c *Catalog) Persona(era string) (Persona, bool) {
	if p, ok := c.personasByEra[era]; ok {
		return p, true
	}
	return Persona{
		Era:       era,
		Name:      "Anonymous",
		Character: "a person living through " + era,
		Setting:   "scene from " + era,
		Mood:      "reflective",
	}, false
}
