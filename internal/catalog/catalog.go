// Package catalog holds the shared exercise list seeded into every store.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"alcyxob/liftlog/internal/domain"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Exercises []struct {
		Name         string `yaml:"name"`
		TargetMuscle string `yaml:"target_muscle"`
	} `yaml:"exercises"`
}

// Seeder is the part of the exercise repository seeding needs.
type Seeder interface {
	Seed(ctx context.Context, exercises []domain.Exercise) (int, error)
}

// Parse decodes a seed document. Names must be present and unique ignoring case.
func Parse(data []byte) ([]domain.Exercise, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog seed: %w", err)
	}

	seen := make(map[string]bool, len(f.Exercises))
	out := make([]domain.Exercise, 0, len(f.Exercises))
	for i, e := range f.Exercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog seed entry %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("catalog seed lists %q twice", name)
		}
		seen[key] = true
		out = append(out, domain.Exercise{Name: name, TargetMuscle: strings.TrimSpace(e.TargetMuscle)})
	}
	return out, nil
}

// Default returns the embedded catalog.
func Default() ([]domain.Exercise, error) {
	return Parse(seedYAML)
}

// Seed inserts the embedded catalog entries that are missing from the store.
func Seed(ctx context.Context, repo Seeder) error {
	exercises, err := Default()
	if err != nil {
		return err
	}
	added, err := repo.Seed(ctx, exercises)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	log.WithFields(log.Fields{"added": added, "total": len(exercises)}).Info("exercise catalog seeded")
	return nil
}
