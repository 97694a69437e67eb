package ml

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Manifest describes one model artifact in the models directory.
type Manifest struct {
	Name         string `yaml:"name"`
	Task         string `yaml:"task"`
	Backend      string `yaml:"backend"`
	Artifact     string `yaml:"artifact"`
	OutputColumn string `yaml:"output_column"`
	Remote       struct {
		Endpoint   string        `yaml:"endpoint"`
		HealthPath string        `yaml:"health_path"`
		Timeout    time.Duration `yaml:"timeout"`
		Probe      bool          `yaml:"probe"`
	} `yaml:"remote"`
}

type StoreOptions struct {
	// CacheSize bounds the per-model prediction cache; 0 disables it.
	CacheSize  int
	OnCacheHit func(model string)
}

// Store holds the models loaded at startup. It is never mutated afterwards.
type Store struct {
	byTask map[Task]*Model
}

func NewStore(models ...*Model) (*Store, error) {
	s := &Store{byTask: make(map[Task]*Model, len(models))}
	names := make(map[string]bool, len(models))
	for _, m := range models {
		if _, ok := s.byTask[m.Task]; ok {
			return nil, fmt.Errorf("more than one model for task %s", m.Task)
		}
		if names[m.Name] {
			return nil, fmt.Errorf("duplicate model name %s", m.Name)
		}
		names[m.Name] = true
		s.byTask[m.Task] = m
	}
	return s, nil
}

func (s *Store) Get(task Task) (*Model, bool) {
	m, ok := s.byTask[task]
	return m, ok
}

// Models returns the loaded models ordered by name.
func (s *Store) Models() []*Model {
	models := make([]*Model, 0, len(s.byTask))
	for _, m := range s.byTask {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models
}

// LoadStore reads every *.yaml / *.yml manifest in dir and loads its model.
func LoadStore(ctx context.Context, dir string, opts StoreOptions) (*Store, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no model manifests in %s", dir)
	}
	sort.Strings(paths)

	models := make([]*Model, 0, len(paths))
	for _, path := range paths {
		manifest, err := readManifest(path)
		if err != nil {
			return nil, err
		}
		model, err := LoadModel(ctx, dir, manifest, opts)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", manifest.Name, err)
		}
		models = append(models, model)
	}
	return NewStore(models...)
}

func readManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if manifest.Name == "" {
		manifest.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return manifest, nil
}

func LoadModel(ctx context.Context, dir string, manifest Manifest, opts StoreOptions) (*Model, error) {
	task, err := ParseTask(manifest.Task)
	if err != nil {
		return nil, err
	}
	output := manifest.OutputColumn
	if output == "" {
		output = task.OutputColumn()
	}

	var predictor Predictor
	switch manifest.Backend {
	case "tree":
		if manifest.Artifact == "" {
			return nil, errors.New("tree backend requires an artifact")
		}
		tree := NewDecisionTree(output)
		if err := tree.Load(filepath.Join(dir, manifest.Artifact)); err != nil {
			return nil, err
		}
		predictor = tree
	case "remote":
		endpoint, err := url.Parse(manifest.Remote.Endpoint)
		if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
			return nil, fmt.Errorf("invalid remote endpoint %q", manifest.Remote.Endpoint)
		}
		remote := NewRemotePredictor(manifest.Name, endpoint.String(), manifest.Remote.Timeout)
		if manifest.Remote.Probe {
			health := endpoint.ResolveReference(&url.URL{Path: manifest.Remote.HealthPath})
			if err := remote.Probe(ctx, health.String()); err != nil {
				return nil, err
			}
		}
		predictor = remote
	default:
		return nil, fmt.Errorf("unsupported backend %q", manifest.Backend)
	}

	if opts.CacheSize > 0 {
		name := manifest.Name
		var onHit func()
		if opts.OnCacheHit != nil {
			onHit = func() { opts.OnCacheHit(name) }
		}
		cached, err := NewCachedPredictor(predictor, opts.CacheSize, onHit)
		if err != nil {
			return nil, err
		}
		predictor = cached
	}

	model := NewModel(manifest.Name, task, predictor)
	model.Output = output
	return model, nil
}
