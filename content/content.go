// Package content loads the landing page copy: hero, timeline, prizes, rules, FAQ and venue.
package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed event.yaml
var defaultEvent []byte

type Event struct {
	Name     string      `yaml:"name"`
	Tagline  string      `yaml:"tagline"`
	Dates    string      `yaml:"dates"`
	Timeline []Milestone `yaml:"timeline"`
	Prizes   []Prize     `yaml:"prizes"`
	Rules    []string    `yaml:"rules"`
	FAQ      []FAQ       `yaml:"faq"`
	Venue    Venue       `yaml:"venue"`
}

type Milestone struct {
	Date  string `yaml:"date"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type Prize struct {
	Place  string `yaml:"place"`
	Amount string `yaml:"amount"`
	Perks  string `yaml:"perks"`
}

type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Venue struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	MapURL  string `yaml:"mapUrl"`
}

// Load reads the event from path, or the built-in event when path is empty.
func Load(path string) (*Event, error) {
	data := defaultEvent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("[content Load] read %s: %w", path, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Event, error) {
	var ev Event
	if err := yaml.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("[content Parse] %w", err)
	}
	if ev.Name == "" {
		return nil, fmt.Errorf("[content Parse] event name is required")
	}
	return &ev, nil
}
