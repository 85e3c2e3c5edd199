package domain

type ToolsetName string

const (
	ToolsetOrgs     ToolsetName = "orgs"
	ToolsetData     ToolsetName = "data"
	ToolsetMetadata ToolsetName = "metadata"
	ToolsetTesting  ToolsetName = "testing"
	ToolsetUsers    ToolsetName = "users"
)

// KnownToolsets lists the toolset names seeded into the cache at startup.
// Ad hoc toolsets created at runtime are not restricted to this list.
func KnownToolsets() []ToolsetName {
	return []ToolsetName{
		ToolsetOrgs,
		ToolsetData,
		ToolsetMetadata,
		ToolsetTesting,
		ToolsetUsers,
	}
}
