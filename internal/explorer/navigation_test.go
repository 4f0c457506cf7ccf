package explorer

import "testing"

func TestNavigation(t *testing.T) {
	nav := Overview()
	if !nav.IsOverview() || nav.Breadcrumb() != "Project" {
		t.Fatalf("Overview() = %+v", nav)
	}

	snap := nav.Snapshot()
	nav.Push("api")
	nav.Push("store")

	if nav.Level != LevelModule || nav.CurrentModule != "store" {
		t.Errorf("after Push: %+v", nav)
	}
	if got := nav.Breadcrumb(); got != "Project → api → store" {
		t.Errorf("Breadcrumb() = %q", got)
	}

	deep := nav.Snapshot()
	nav.Path[0] = "mutated"
	if deep.Path[0] != "api" {
		t.Error("Snapshot() shares the path slice")
	}

	nav.Restore(snap)
	if !nav.IsOverview() || nav.Level != LevelOverview || nav.CurrentModule != "" {
		t.Errorf("after Restore: %+v", nav)
	}

	nav.Restore(deep)
	nav.Reset()
	if !nav.IsOverview() || nav.Path != nil {
		t.Errorf("after Reset: %+v", nav)
	}
}
