package domain

import "errors"

var (
	ErrOrgNotFound     = errors.New("org not found")
	ErrNoAllowedOrgs   = errors.New("no orgs match the allow-list")
	ErrOrgExpired      = errors.New("org authorization expired")
	ErrNoDefaultOrg    = errors.New("no default org configured")
	ErrToolNotFound    = errors.New("tool not found")
	ErrToolExists      = errors.New("tool already registered")
	ErrToolsetNotFound = errors.New("toolset not found")
	ErrAlreadyEnabled  = errors.New("already enabled")
	ErrAlreadyDisabled = errors.New("already disabled")
	ErrMemberExists    = errors.New("tool already in toolset")
)
