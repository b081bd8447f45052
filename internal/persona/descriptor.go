// Package persona defines the team roles and the generic call that runs one.
package persona

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Settings are the generation parameters for a persona.
type Settings struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Descriptor is the fixed configuration of one persona.
type Descriptor struct {
	ID           models.PersonaID
	Title        string
	Instructions string
	Settings     Settings
}

// Catalog holds one descriptor per persona.
type Catalog struct {
	descriptors map[models.PersonaID]Descriptor
}

// DefaultCatalog returns the built-in team.
// Code-writing personas run cooler than planning personas.
func DefaultCatalog() *Catalog {
	c := &Catalog{descriptors: make(map[models.PersonaID]Descriptor)}
	temps := map[models.PersonaID]float64{
		models.PersonaProductOwner: 0.7,
		models.PersonaStrategist:   0.7,
		models.PersonaArchitect:    0.7,
		models.PersonaDeveloper:    0.3,
		models.PersonaTester:       0.5,
		models.PersonaWriter:       0.6,
		models.PersonaSecurity:     0.5,
		models.PersonaDevOps:       0.4,
		models.PersonaSynthesizer:  0.6,
	}
	for _, id := range models.AllPersonas {
		c.descriptors[id] = Descriptor{
			ID:           id,
			Title:        id.Title(),
			Instructions: defaultInstructions[id],
			Settings: Settings{
				Temperature: temps[id],
				MaxTokens:   models.DefaultMaxTokens,
			},
		}
	}
	return c
}

// Get returns the descriptor for id.
func (c *Catalog) Get(id models.PersonaID) (Descriptor, bool) {
	d, ok := c.descriptors[id]
	return d, ok
}

// Set replaces the descriptor for d.ID.
func (c *Catalog) Set(d Descriptor) {
	c.descriptors[d.ID] = d
}

// override is one entry of a personas file.
type override struct {
	Model             string   `yaml:"model"`
	Temperature       *float64 `yaml:"temperature"`
	MaxTokens         int      `yaml:"max_tokens"`
	Instructions      string   `yaml:"instructions"`
	ExtraInstructions string   `yaml:"extra_instructions"`
}

// personasFile is the layout of personas.yaml.
type personasFile struct {
	Personas map[string]override `yaml:"personas"`
}

// LoadOverrides applies a personas.yaml file on top of the catalog.
// Unknown persona names are rejected.
func (c *Catalog) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return c.ApplyOverrides(data)
}

// ApplyOverrides applies YAML override data on top of the catalog.
func (c *Catalog) ApplyOverrides(data []byte) error {
	var file personasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse personas file: %w", err)
	}

	for name, o := range file.Personas {
		id, err := models.ParsePersonaID(name)
		if err != nil {
			return fmt.Errorf("personas file: %w", err)
		}
		d := c.descriptors[id]
		if o.Model != "" {
			d.Settings.Model = o.Model
		}
		if o.Temperature != nil {
			if *o.Temperature < 0 || *o.Temperature > 1 {
				return fmt.Errorf("personas file: %s temperature %.2f out of range 0-1", name, *o.Temperature)
			}
			d.Settings.Temperature = *o.Temperature
		}
		if o.MaxTokens > 0 {
			d.Settings.MaxTokens = o.MaxTokens
		}
		if o.Instructions != "" {
			d.Instructions = o.Instructions
		}
		if extra := strings.TrimSpace(o.ExtraInstructions); extra != "" {
			d.Instructions = d.Instructions + "\n\n" + extra
		}
		c.descriptors[id] = d
	}
	return nil
}
