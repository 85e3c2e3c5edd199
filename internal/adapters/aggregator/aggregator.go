// Package aggregator resolves default-org pointers from the configuration
// file chain: the project-local .dxmcp/config.toml wins over the global
// ~/.dxmcp/config.toml.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

const (
	configDir      = ".dxmcp"
	configFileName = "config.toml"
)

type source struct {
	location domain.ConfigLocation
	path     string
	cfg      *viper.Viper
}

type Aggregator struct {
	workDir func() (string, error)
	homeDir func() (string, error)

	mu      sync.Mutex
	sources []source
}

var _ ports.ConfigAggregator = (*Aggregator)(nil)

func New() *Aggregator {
	return NewWithRoots(os.Getwd, os.UserHomeDir)
}

// NewWithRoots overrides how the project and global roots are discovered.
func NewWithRoots(workDir, homeDir func() (string, error)) *Aggregator {
	return &Aggregator{workDir: workDir, homeDir: homeDir}
}

// Reload drops every loaded source so the next resolution observes the
// current working directory and re-reads the files behind it.
func (a *Aggregator) Reload() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sources = nil
}

// ResolveDefault walks the chain in priority order and returns the first
// source that configures the key. Returns domain.ErrNoDefaultOrg when none
// does; a malformed config file is surfaced as-is.
func (a *Aggregator) ResolveDefault(ctx context.Context, key domain.ConfigKey) (domain.DefaultRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.DefaultRef{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sources == nil {
		sources, err := a.loadSources()
		if err != nil {
			return domain.DefaultRef{}, err
		}
		a.sources = sources
	}

	for _, src := range a.sources {
		if !src.cfg.IsSet(string(key)) {
			continue
		}
		return domain.DefaultRef{
			Key:      key,
			Value:    src.cfg.GetString(string(key)),
			Path:     src.path,
			Location: src.location,
		}, nil
	}

	return domain.DefaultRef{}, fmt.Errorf("%w: %s is not set in any config file", domain.ErrNoDefaultOrg, key)
}

func (a *Aggregator) loadSources() ([]source, error) {
	// Loading tolerates a missing root or file; individual files that exist
	// but do not parse fail the whole resolution.
	sources := make([]source, 0, 2)

	if workDir, err := a.workDir(); err == nil {
		src, ok, err := loadSource(domain.LocationProject, filepath.Join(workDir, configDir, configFileName))
		if err != nil {
			return nil, err
		}
		if ok {
			sources = append(sources, src)
		}
	}

	if homeDir, err := a.homeDir(); err == nil {
		src, ok, err := loadSource(domain.LocationGlobal, filepath.Join(homeDir, configDir, configFileName))
		if err != nil {
			return nil, err
		}
		if ok {
			sources = append(sources, src)
		}
	}

	return sources, nil
}

func loadSource(location domain.ConfigLocation, path string) (source, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return source{}, false, nil
		}
		return source{}, false, fmt.Errorf("stat %s config: %w", location, err)
	}

	cfg := viper.New()
	cfg.SetConfigFile(path)
	cfg.SetConfigType("toml")
	if err := cfg.ReadInConfig(); err != nil {
		return source{}, false, fmt.Errorf("read %s config %s: %w", location, path, err)
	}

	return source{location: location, path: path, cfg: cfg}, true, nil
}
