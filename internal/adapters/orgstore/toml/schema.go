package toml

import (
	"fmt"
	"time"

	"github.com/zerkz/dxmcp/internal/domain"
)

const currentSchemaVersion = 1

const expirationDateLayout = "2006-01-02"

type authSchema struct {
	Version        int      `toml:"version"`
	Username       string   `toml:"username"`
	Aliases        []string `toml:"aliases,omitempty"`
	InstanceURL    string   `toml:"instance_url"`
	AccessToken    string   `toml:"access_token"`
	RefreshToken   string   `toml:"refresh_token,omitempty"`
	ClientID       string   `toml:"client_id,omitempty"`
	IsDevHub       bool     `toml:"is_dev_hub,omitempty"`
	IsScratch      bool     `toml:"is_scratch,omitempty"`
	IsSandbox      bool     `toml:"is_sandbox,omitempty"`
	ConnectedState string   `toml:"connected_state,omitempty"`
	ExpirationDate string   `toml:"expiration_date,omitempty"`
}

func (s *authSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s authSchema) validate() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported auth schema version %d (current %d)", s.Version, currentSchemaVersion)
	}
	if s.Username == "" {
		return fmt.Errorf("auth file has no username")
	}

	return nil
}

func fromSchema(s authSchema) (domain.OrgAuthorization, error) {
	auth := domain.OrgAuthorization{
		Username:       domain.OrgUsername(s.Username),
		Aliases:        s.Aliases,
		InstanceURL:    s.InstanceURL,
		AccessToken:    s.AccessToken,
		RefreshToken:   s.RefreshToken,
		ClientID:       s.ClientID,
		IsDevHub:       s.IsDevHub,
		IsScratch:      s.IsScratch,
		IsSandbox:      s.IsSandbox,
		ConnectedState: s.ConnectedState,
	}

	if s.ExpirationDate != "" {
		expiration, err := time.Parse(expirationDateLayout, s.ExpirationDate)
		if err != nil {
			return domain.OrgAuthorization{}, fmt.Errorf("parse expiration date %q: %w", s.ExpirationDate, err)
		}
		auth.ExpirationDate = expiration
	}

	return auth, nil
}
