// Package toml reads org authorizations from the local auth directory, one
// TOML file per org. The directory is re-read on every listing; this adapter
// never caches and never writes.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

const (
	configName   = "config"
	configType   = "toml"
	authDirKey   = "auth.dir"
	configDir    = ".dxmcp"
	authDirName  = "auth"
	authFileExt  = ".toml"
)

type Store struct {
	authDir string
}

var _ ports.OrgStore = (*Store)(nil)

// NewStore resolves the auth directory from the global config file
// (~/.dxmcp/config.toml, key "auth.dir"), defaulting to ~/.dxmcp/auth.
func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(authDirKey, filepath.Join(homeDir, configDir, authDirName))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return NewStoreAt(cfg.GetString(authDirKey))
}

// NewStoreAt uses the given auth directory directly.
func NewStoreAt(authDir string) (*Store, error) {
	if authDir == "" {
		return nil, errors.New("auth directory is empty")
	}

	absDir, err := filepath.Abs(authDir)
	if err != nil {
		return nil, fmt.Errorf("resolve auth directory: %w", err)
	}

	return &Store{authDir: filepath.Clean(absDir)}, nil
}

func (s *Store) ListAllAuthorizations(ctx context.Context) ([]domain.OrgAuthorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.authDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read auth directory: %w", err)
	}

	auths := make([]domain.OrgAuthorization, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), authFileExt) {
			continue
		}

		auth, err := s.readAuthFile(filepath.Join(s.authDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("auth file %s: %w", entry.Name(), err)
		}
		auths = append(auths, auth)
	}

	sort.Slice(auths, func(i, j int) bool { return auths[i].Username < auths[j].Username })
	return auths, nil
}

func (s *Store) readAuthFile(path string) (domain.OrgAuthorization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.OrgAuthorization{}, fmt.Errorf("read auth file: %w", err)
	}

	var schema authSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return domain.OrgAuthorization{}, fmt.Errorf("decode auth file: %w", err)
	}
	schema.applyDefaults()
	if err := schema.validate(); err != nil {
		return domain.OrgAuthorization{}, err
	}

	return fromSchema(schema)
}
