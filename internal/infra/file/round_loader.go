// Package file loads round content from a directory of YAML documents.
//
// Each *.yaml or *.yml file holds a list of rounds under a top-level
// "rounds" key. Round ids must be unique across the directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"escape-room-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type document struct {
	Rounds []domain.Round `yaml:"rounds"`
}

// RoundLoader reads rounds from dir on every load; put a cache in front of it.
type RoundLoader struct {
	dir string
}

func NewRoundLoader(dir string) *RoundLoader {
	return &RoundLoader{dir: dir}
}

func (l *RoundLoader) LoadRound(_ context.Context, roundID string) (domain.Round, error) {
	rounds, err := l.LoadAll()
	if err != nil {
		return domain.Round{}, err
	}
	for _, r := range rounds {
		if r.ID == roundID {
			return r, nil
		}
	}
	return domain.Round{}, domain.ErrRoundNotFound
}

// LoadAll returns every round in the directory ordered by section and index.
func (l *RoundLoader) LoadAll() ([]domain.Round, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var rounds []domain.Round
	origin := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		doc, err := readDocument(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		for _, r := range doc.Rounds {
			if prev, dup := origin[r.ID]; dup {
				return nil, fmt.Errorf("round %q defined in both %s and %s", r.ID, prev, name)
			}
			origin[r.ID] = name
			rounds = append(rounds, r)
		}
	}

	sort.SliceStable(rounds, func(i, j int) bool {
		if rounds[i].Section != rounds[j].Section {
			return rounds[i].Section < rounds[j].Section
		}
		return rounds[i].Index < rounds[j].Index
	})
	return rounds, nil
}

func readDocument(path string) (document, error) {
	var doc document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
