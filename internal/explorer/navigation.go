package explorer

import "strings"

// Level is the depth of the displayed diagram.
type Level string

const (
	LevelOverview Level = "overview"
	LevelModule   Level = "module"
)

// Navigation is the drill-down position. Level is LevelModule exactly when
// Path is non-empty, and CurrentModule is then the last path element.
type Navigation struct {
	Level         Level
	CurrentModule string
	Path          []string
}

// Overview returns the top-level navigation.
func Overview() Navigation {
	return Navigation{Level: LevelOverview}
}

// Snapshot returns an independent copy.
func (n Navigation) Snapshot() Navigation {
	n.Path = append([]string(nil), n.Path...)
	return n
}

// Restore replaces n with a copy of s.
func (n *Navigation) Restore(s Navigation) {
	*n = s.Snapshot()
}

// Push descends into module.
func (n *Navigation) Push(module string) {
	n.Path = append(n.Snapshot().Path, module)
	n.Level = LevelModule
	n.CurrentModule = module
}

// Reset returns to the overview.
func (n *Navigation) Reset() {
	*n = Overview()
}

// IsOverview reports whether n is at the top level.
func (n Navigation) IsOverview() bool {
	return len(n.Path) == 0
}

// Breadcrumb renders the path as "Project → a → b".
func (n Navigation) Breadcrumb() string {
	return strings.Join(append([]string{"Project"}, n.Path...), " → ")
}
