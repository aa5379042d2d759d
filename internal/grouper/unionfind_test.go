package grouper

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func setOf(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestUnionFindMergesTransitively(t *testing.T) {
	uf := newUnionFind()
	for _, id := range []string{"a", "b", "c", "d"} {
		uf.add(id)
	}
	uf.union("a", "b")
	uf.union("b", "c")

	if uf.find("a") != uf.find("c") {
		t.Error("expected a and c to share a root after transitive union")
	}
	if uf.find("a") == uf.find("d") {
		t.Error("expected d to remain its own component")
	}
}

func TestUnionFindGroupsPartitionsCorrectly(t *testing.T) {
	uf := newUnionFind()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		uf.add(id)
	}
	uf.union("a", "b")
	uf.union("c", "d")

	groups := uf.groups()
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	var sawAB, sawCD, sawE bool
	for _, g := range groups {
		s := setOf(g)
		switch {
		case len(s) == 2 && s["a"] && s["b"]:
			sawAB = true
		case len(s) == 2 && s["c"] && s["d"]:
			sawCD = true
		case len(s) == 1 && s["e"]:
			sawE = true
		}
	}
	if !sawAB || !sawCD || !sawE {
		t.Errorf("unexpected groups: %v", groups)
	}
}

func TestUnionFindGroupsMatchesExpectedPartitionExactly(t *testing.T) {
	uf := newUnionFind()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		uf.add(id)
	}
	uf.union("a", "b")
	uf.union("c", "d")

	got := uf.groups()
	for _, g := range got {
		sort.Strings(g)
	}
	sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })

	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionFindUnionIsIdempotent(t *testing.T) {
	uf := newUnionFind()
	uf.add("a")
	uf.add("b")
	uf.union("a", "b")
	uf.union("a", "b")
	uf.union("b", "a")

	if len(uf.groups()) != 1 {
		t.Error("expected repeated unions of the same pair to collapse into one group")
	}
}
