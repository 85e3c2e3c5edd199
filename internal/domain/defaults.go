package domain

type ConfigKey string

const (
	KeyTargetOrg    ConfigKey = "target-org"
	KeyTargetDevHub ConfigKey = "target-dev-hub"
)

type ConfigLocation string

const (
	LocationProject ConfigLocation = "project"
	LocationGlobal  ConfigLocation = "global"
)

// DefaultRef is a resolved default-org pointer. Once read for a given Path
// the value is held for the rest of the process; see the resolver.
type DefaultRef struct {
	Key      ConfigKey
	Value    string
	Path     string
	Location ConfigLocation
}
