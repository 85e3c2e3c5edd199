package domain

import "time"

type OrgUsername string

// Org is the sanitized, caller-visible view of an org authorization.
// It carries only the fields safe to expose to tool callers.
type Org struct {
	Username       OrgUsername
	Aliases        []string
	InstanceURL    string
	IsDevHub       bool
	IsScratch      bool
	IsSandbox      bool
	IsExpired      bool
	ConnectedState string
}

func (o Org) Matches(usernameOrAlias string) bool {
	if usernameOrAlias == "" {
		return false
	}
	if string(o.Username) == usernameOrAlias {
		return true
	}
	for _, alias := range o.Aliases {
		if alias == usernameOrAlias {
			return true
		}
	}
	return false
}

// OrgAuthorization is the full record as read from the local auth store,
// including connection secrets that must never reach tool callers.
type OrgAuthorization struct {
	Username       OrgUsername
	Aliases        []string
	InstanceURL    string
	AccessToken    string
	RefreshToken   string
	ClientID       string
	IsDevHub       bool
	IsScratch      bool
	IsSandbox      bool
	ConnectedState string
	ExpirationDate time.Time
}

func (a OrgAuthorization) Expired(now time.Time) bool {
	return !a.ExpirationDate.IsZero() && a.ExpirationDate.Before(now)
}

// Sanitized strips every field outside the explicit safe set.
func (a OrgAuthorization) Sanitized(now time.Time) Org {
	aliases := make([]string, len(a.Aliases))
	copy(aliases, a.Aliases)

	return Org{
		Username:       a.Username,
		Aliases:        aliases,
		InstanceURL:    a.InstanceURL,
		IsDevHub:       a.IsDevHub,
		IsScratch:      a.IsScratch,
		IsSandbox:      a.IsSandbox,
		IsExpired:      a.Expired(now),
		ConnectedState: a.ConnectedState,
	}
}
