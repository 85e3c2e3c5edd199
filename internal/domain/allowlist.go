package domain

import "strings"

// Sentinel allow-list entries recognized at startup.
const (
	AllowAllOrgs        = "ALLOW_ALL_ORGS"
	DefaultTargetOrg    = "DEFAULT_TARGET_ORG"
	DefaultTargetDevHub = "DEFAULT_TARGET_DEV_HUB"
)

type AllowList struct {
	entries map[string]struct{}
}

func NewAllowList(entries []string) AllowList {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		set[entry] = struct{}{}
	}

	return AllowList{entries: set}
}

func (l AllowList) Contains(entry string) bool {
	_, ok := l.entries[entry]
	return ok
}

func (l AllowList) AllowsAll() bool {
	return l.Contains(AllowAllOrgs)
}

func (l AllowList) Entries() []string {
	entries := make([]string, 0, len(l.entries))
	for entry := range l.entries {
		entries = append(entries, entry)
	}
	return entries
}

func (l AllowList) Empty() bool {
	return len(l.entries) == 0
}
