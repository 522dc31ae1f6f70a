package model

import "time"

// Project is an analysed project with an ordered list of versions.
type Project struct {
	Name      string    `json:"name"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

// StructureRow is one structure node returned by the query layer. Path is
// prefixed with the project name. Changed rows are tagged with the version
// they changed in; untagged rows are version-independent ancestors.
type StructureRow struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Labels  []string `json:"labels"`
	Changed bool     `json:"changed,omitempty"`
}

// DependencyRow is one added or deleted dependency returned by the query
// layer. Path, Name and Labels describe the dependency target; the UsedBy
// fields describe the referring node.
type DependencyRow struct {
	Path         string   `json:"path"`
	Name         string   `json:"name"`
	Labels       []string `json:"labels"`
	Added        bool     `json:"added"`
	UsedByPath   string   `json:"used_by_path"`
	UsedByLabels []string `json:"used_by_labels"`
	UsedByName   string   `json:"used_by_name"`
}

// ChangeSet is the payload imported for one project version.
type ChangeSet struct {
	Structure    []*StructureRow  `json:"structure"`
	Dependencies []*DependencyRow `json:"dependencies"`
}

// Selection identifies a loaded changelog.
type Selection struct {
	Project string `json:"project"`
	Version string `json:"version"`
}

// ChangelogSummary describes the currently loaded changelog.
type ChangelogSummary struct {
	LoadID      string       `json:"load_id"`
	Project     string       `json:"project"`
	Version     string       `json:"version"`
	Records     int          `json:"records"`
	LoadedAt    time.Time    `json:"loaded_at"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}
