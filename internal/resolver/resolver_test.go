package resolver

import (
	"errors"
	"sort"
	"testing"

	"github.com/ethanolivertroy/pacprune/internal/models"
	"github.com/ethanolivertroy/pacprune/internal/version"
)

func pkg(name, pkgver, pkgrel string) models.Package {
	v := version.MustParse(pkgver, pkgrel)
	return models.Package{
		Path:          "/pkg/" + name + "-" + v.Raw + "-x86_64.pkg.tar.xz",
		Name:          name,
		VersionString: v.Raw,
		Version:       v,
		Arch:          "x86_64",
		Compression:   "xz",
	}
}

func paths(pkgs []models.Package) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.Path)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsert_NewerPromotes(t *testing.T) {
	old, newer := pkg("foo", "1.0", "1"), pkg("foo", "1.1", "1")

	step, err := Insert(NewGroup(old), newer, false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if step.Group.Best.Path != newer.Path {
		t.Errorf("Best = %s, want %s", step.Group.Best.Path, newer.Path)
	}
	if step.Group.HasAmbiguities() {
		t.Errorf("unexpected ambiguities: %v", step.Group.Ambiguous)
	}
	if got := paths(step.Losers); !equalStrings(got, []string{old.Path}) {
		t.Errorf("Losers = %v, want [%s]", got, old.Path)
	}
}

func TestInsert_OlderLoses(t *testing.T) {
	best, older := pkg("foo", "2.0", "1"), pkg("foo", "1.9", "3")

	step, err := Insert(NewGroup(best), older, false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if step.Group.Best.Path != best.Path {
		t.Errorf("Best = %s, want %s", step.Group.Best.Path, best.Path)
	}
	if got := paths(step.Losers); !equalStrings(got, []string{older.Path}) {
		t.Errorf("Losers = %v, want [%s]", got, older.Path)
	}
}

func TestInsert_ReviewAllKeepsOlder(t *testing.T) {
	best, older := pkg("foo", "2.0", "1"), pkg("foo", "1.9", "3")

	step, err := Insert(NewGroup(best), older, true)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(step.Losers) != 0 {
		t.Errorf("Losers = %v, want none", paths(step.Losers))
	}
	if got := paths(step.Group.Ambiguous); !equalStrings(got, []string{older.Path}) {
		t.Errorf("Ambiguous = %v, want [%s]", got, older.Path)
	}

	// Promotion under reviewAll also keeps the displaced best for review.
	newest := pkg("foo", "3.0", "1")
	step, err = Insert(step.Group, newest, true)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(step.Losers) != 0 {
		t.Errorf("Losers = %v, want none", paths(step.Losers))
	}
	if got := paths(step.Group.Ambiguous); !equalStrings(got, paths([]models.Package{best, older})) {
		t.Errorf("Ambiguous = %v", got)
	}
}

func TestInsert_EqualJoinsAmbiguous(t *testing.T) {
	a, b := pkg("linux", "5.3.arch1", "1"), pkg("linux", "5.3.1.arch1", "1")

	step, err := Insert(NewGroup(a), b, false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if step.Group.Best.Path != a.Path {
		t.Errorf("Best = %s, want %s", step.Group.Best.Path, a.Path)
	}
	if got := paths(step.Group.Ambiguous); !equalStrings(got, []string{b.Path}) {
		t.Errorf("Ambiguous = %v, want [%s]", got, b.Path)
	}
	if len(step.Losers) != 0 {
		t.Errorf("Losers = %v, want none", paths(step.Losers))
	}
}

func TestInsert_PromotionRecomparesAlternates(t *testing.T) {
	best := pkg("foo", "1.0a", "1")
	alt := pkg("foo", "1.0.5", "1") // incomparable with 1.0a

	g := NewGroup(best)
	step, err := Insert(g, alt, false)
	if err != nil {
		t.Fatalf("Insert alt: %v", err)
	}
	g = step.Group

	t.Run("alternate now older", func(t *testing.T) {
		newer := pkg("foo", "1.1", "1")
		step, err := Insert(g, newer, false)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if step.Group.Best.Path != newer.Path {
			t.Errorf("Best = %s, want %s", step.Group.Best.Path, newer.Path)
		}
		if step.Group.HasAmbiguities() {
			t.Errorf("Ambiguous = %v, want none", paths(step.Group.Ambiguous))
		}
		if got := paths(step.Losers); !equalStrings(got, paths([]models.Package{best, alt})) {
			t.Errorf("Losers = %v", got)
		}
	})

	t.Run("alternate still ambiguous", func(t *testing.T) {
		newer := pkg("foo", "1.0b", "1")
		step, err := Insert(g, newer, false)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if step.Group.Best.Path != newer.Path {
			t.Errorf("Best = %s, want %s", step.Group.Best.Path, newer.Path)
		}
		if got := paths(step.Group.Ambiguous); !equalStrings(got, []string{alt.Path}) {
			t.Errorf("Ambiguous = %v, want [%s]", got, alt.Path)
		}
		if got := paths(step.Losers); !equalStrings(got, []string{best.Path}) {
			t.Errorf("Losers = %v, want [%s]", got, best.Path)
		}
	})
}

func TestInsert_AlternateOutranksNewBest(t *testing.T) {
	best, alt, newer := pkg("foo", "1", "1"), pkg("foo", "3", "1"), pkg("foo", "2", "1")

	// best == alt, newer > best, alt > newer: not possible with the real
	// comparator, which is the point of the warning.
	ranks := map[string]int{best.VersionString: 1, alt.VersionString: 1, newer.VersionString: 2}
	orig := compare
	compare = func(a, b version.Version) version.Ordering {
		if a.Raw == alt.VersionString && b.Raw == newer.VersionString {
			return version.Greater
		}
		switch ra, rb := ranks[a.Raw], ranks[b.Raw]; {
		case ra < rb:
			return version.Less
		case ra > rb:
			return version.Greater
		}
		return version.Equal
	}
	t.Cleanup(func() { compare = orig })

	step, err := Insert(Group{Best: best, Ambiguous: []models.Package{alt}}, newer, false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if step.Group.Best.Path != newer.Path {
		t.Errorf("Best = %s, want %s", step.Group.Best.Path, newer.Path)
	}
	if got := paths(step.Group.Ambiguous); !equalStrings(got, []string{alt.Path}) {
		t.Errorf("Ambiguous = %v, want [%s]", got, alt.Path)
	}
	if len(step.Anomalies) != 1 {
		t.Fatalf("Anomalies = %v, want 1", step.Anomalies)
	}
	a := step.Anomalies[0]
	if a.Name != "foo" || a.Best != newer.VersionString || a.Alternate != alt.VersionString || a.Path != alt.Path {
		t.Errorf("Anomaly = %+v", a)
	}
	if got := paths(step.Losers); !equalStrings(got, []string{best.Path}) {
		t.Errorf("Losers = %v, want [%s]", got, best.Path)
	}
}

func TestInsert_DoesNotMutateInput(t *testing.T) {
	best := pkg("linux", "5.3.arch1", "1")
	alt := pkg("linux", "5.3.1.arch1", "1")
	other := pkg("linux", "5.3.2.arch1", "1")

	backing := make([]models.Package, 1, 4)
	backing[0] = alt
	g := Group{Best: best, Ambiguous: backing}

	step, err := Insert(g, other, false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(g.Ambiguous) != 1 || g.Ambiguous[0].Path != alt.Path {
		t.Errorf("input group changed: %v", paths(g.Ambiguous))
	}
	if got := backing[:2][1]; got.Path != "" {
		t.Errorf("input backing array written: %s", got.Path)
	}
	if len(step.Group.Ambiguous) != 2 {
		t.Errorf("Ambiguous = %v, want 2 entries", paths(step.Group.Ambiguous))
	}
}

func TestInsert_DuplicatePath(t *testing.T) {
	p := pkg("foo", "1.0", "1")
	_, err := Insert(NewGroup(p), p, false)
	if !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("Insert error = %v, want %v", err, ErrDuplicatePath)
	}
}

func TestInsert_WrongGroup(t *testing.T) {
	_, err := Insert(NewGroup(pkg("foo", "1.0", "1")), pkg("bar", "1.0", "1"), false)
	if err == nil {
		t.Error("Insert into a group of another name expected error")
	}
}

func TestResolver_Partition(t *testing.T) {
	inputs := []models.Package{
		pkg("foo", "1.0", "1"),
		pkg("bar", "2.0", "1"),
		pkg("foo", "1.2", "1"),
		pkg("foo", "1.1", "1"),
		pkg("bar", "1.0", "1"),
		pkg("linux", "5.3.arch1", "1"),
		pkg("linux", "5.3.1.arch1", "1"),
		pkg("baz", "0.1", "1"),
	}

	r := New(false, nil)
	for _, p := range inputs {
		if err := r.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p.Path, err)
		}
	}

	groups := r.Groups()
	var names []string
	seen := make(map[string]int)
	for _, g := range groups {
		names = append(names, g.Name())
		for _, c := range g.Candidates() {
			seen[c.Path]++
		}
	}
	for _, l := range r.Losers() {
		seen[l.Path]++
	}

	if !equalStrings(names, []string{"bar", "baz", "foo", "linux"}) {
		t.Errorf("group names = %v", names)
	}
	for _, p := range inputs {
		if seen[p.Path] != 1 {
			t.Errorf("%s seen %d times, want exactly once", p.Path, seen[p.Path])
		}
	}

	best := make(map[string]string)
	for _, g := range groups {
		best[g.Name()] = g.Best.VersionString
	}
	want := map[string]string{"foo": "1.2-1", "bar": "2.0-1", "baz": "0.1-1", "linux": "5.3.arch1-1"}
	for name, v := range want {
		if best[name] != v {
			t.Errorf("best[%s] = %s, want %s", name, best[name], v)
		}
	}
	if len(r.Anomalies()) != 0 {
		t.Errorf("Anomalies = %v, want none", r.Anomalies())
	}
}

func TestResolver_DuplicatePath(t *testing.T) {
	r := New(false, nil)
	p := pkg("foo", "1.0", "1")
	if err := r.Add(p); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add(p); !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("second Add error = %v, want %v", err, ErrDuplicatePath)
	}
}
