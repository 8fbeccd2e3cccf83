package clean

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modir/modir/internal/directory"
)

// fakeLookup serves canned identities and counts calls per ID.
type fakeLookup struct {
	mu     sync.Mutex
	people map[int]directory.Person
	errs   map[int]error
	calls  map[int]int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		people: map[int]directory.Person{},
		errs:   map[int]error{},
		calls:  map[int]int{},
	}
}

func (f *fakeLookup) UserByID(_ context.Context, id int) (directory.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err, ok := f.errs[id]; ok {
		return directory.Person{}, err
	}
	if p, ok := f.people[id]; ok {
		return p, nil
	}
	return directory.Person{}, errors.New("not found")
}

func (f *fakeLookup) callCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func testDirectory() *directory.Directory {
	return &directory.Directory{
		Repo: "repo",
		People: []directory.Person{
			{BMOID: 1},
			{BMOID: 2},
		},
		Modules: []*directory.Module{
			{
				MachineName: "zeta",
				Name:        "Zeta",
				Includes:    []string{"zeta/**/*"},
				Owners:      []directory.PersonRef{{BMOID: 1}},
			},
			{
				MachineName: "alpha",
				Name:        "Alpha",
				Includes:    []string{"alpha/**/*"},
				Owners:      []directory.PersonRef{{BMOID: 2}},
				Peers:       []directory.PersonRef{{BMOID: 1}},
			},
		},
	}
}

func TestCleanEnrichesAndSorts(t *testing.T) {
	lookup := newFakeLookup()
	lookup.people[1] = directory.Person{Name: "alice@example.com", RealName: "Alice", Nick: "alice", Email: "alice@example.com"}
	lookup.people[2] = directory.Person{Name: "bob@example.com", RealName: "Bob", Nick: "Bob", Email: "bob@example.com"}

	d := testDirectory()
	result, err := Clean(context.Background(), d, lookup, Options{})
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	out := result.Directory
	// Modules sorted by machine name.
	require.Len(t, out.Modules, 2)
	assert.Equal(t, "alpha", out.Modules[0].MachineName)
	assert.Equal(t, "zeta", out.Modules[1].MachineName)

	// People enriched, keyed by their IDs, sorted by nick.
	require.Len(t, out.People, 2)
	assert.Equal(t, "alice", out.People[0].Nick)
	assert.Equal(t, 1, out.People[0].BMOID)
	assert.Equal(t, "Bob", out.People[1].Nick)
	assert.Equal(t, "Bob", out.People[1].RealName[:3])

	// Input untouched.
	assert.Equal(t, "zeta", d.Modules[0].MachineName)
	assert.False(t, d.People[0].Resolved())
}

func TestCleanOneCallPerUniqueID(t *testing.T) {
	lookup := newFakeLookup()
	lookup.people[7] = directory.Person{RealName: "Grace", Nick: "grace"}

	// ID 7 referenced from two modules; only one person record and only
	// one lookup.
	d := &directory.Directory{
		People: []directory.Person{{BMOID: 7}},
		Modules: []*directory.Module{
			{MachineName: "a", Name: "a", Includes: []string{"a/*"}, Owners: []directory.PersonRef{{BMOID: 7}}},
			{MachineName: "b", Name: "b", Includes: []string{"b/*"}, Owners: []directory.PersonRef{{BMOID: 7}}},
		},
	}

	result, err := Clean(context.Background(), d, lookup, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.callCount(7))
	require.Len(t, result.Directory.People, 1)
	assert.Equal(t, "grace", result.Directory.People[0].Nick)
}

func TestCleanSkipsResolvedPeople(t *testing.T) {
	lookup := newFakeLookup()

	d := &directory.Directory{
		People: []directory.Person{{BMOID: 3, RealName: "Known", Nick: "known"}},
		Modules: []*directory.Module{
			{MachineName: "m", Name: "m", Includes: []string{"m/*"}, Owners: []directory.PersonRef{{BMOID: 3}}},
		},
	}

	result, err := Clean(context.Background(), d, lookup, Options{})
	require.NoError(t, err)
	assert.Zero(t, lookup.callCount(3))
	assert.Equal(t, "known", result.Directory.People[0].Nick)
}

func TestCleanPartialFailure(t *testing.T) {
	lookup := newFakeLookup()
	lookup.people[1] = directory.Person{RealName: "Alice", Nick: "alice"}
	lookup.errs[2] = errors.New("bugzilla 503")

	d := testDirectory()
	result, err := Clean(context.Background(), d, lookup, Options{Workers: 2})
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 2, result.Failures[0].BMOID)

	// The failed ID keeps its ID-only record; the other is enriched.
	byID := result.Directory.PeopleByID()
	assert.False(t, byID[2].Resolved())
	assert.True(t, byID[1].Resolved())
}

func TestCleanAddsMissingRecordsAndRemovesOrphans(t *testing.T) {
	lookup := newFakeLookup()
	lookup.people[5] = directory.Person{RealName: "Eve", Nick: "eve"}

	d := &directory.Directory{
		People: []directory.Person{
			{BMOID: 100, RealName: "Orphan", Nick: "orphan"}, // referenced by nothing
		},
		Modules: []*directory.Module{
			{MachineName: "m", Name: "m", Includes: []string{"m/*"}, Owners: []directory.PersonRef{{BMOID: 5}}},
		},
	}

	result, err := Clean(context.Background(), d, lookup, Options{})
	require.NoError(t, err)

	byID := result.Directory.PeopleByID()
	_, hasOrphan := byID[100]
	assert.False(t, hasOrphan)
	assert.Equal(t, "eve", byID[5].Nick)
}

func TestCleanGeneratesMachineNames(t *testing.T) {
	d := &directory.Directory{
		Modules: []*directory.Module{
			{Name: "Core: Accessibility", Includes: []string{"a11y/**/*"}},
		},
	}

	result, err := Clean(context.Background(), d, newFakeLookup(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "core_accessibility", result.Directory.Modules[0].MachineName)
}

func TestCleanSortsSubmodules(t *testing.T) {
	d := &directory.Directory{
		Modules: []*directory.Module{
			{
				MachineName: "p",
				Name:        "p",
				Includes:    []string{"p/**/*"},
				Submodules: []*directory.Module{
					{MachineName: "p.z", Name: "p.z"},
					{MachineName: "p.a", Name: "p.a"},
				},
			},
		},
	}

	result, err := Clean(context.Background(), d, newFakeLookup(), Options{})
	require.NoError(t, err)
	subs := result.Directory.Modules[0].Submodules
	require.Len(t, subs, 2)
	assert.Equal(t, "p.a", subs[0].MachineName)
	assert.Equal(t, "p.z", subs[1].MachineName)
}

func TestCleanIsIdempotent(t *testing.T) {
	lookup := newFakeLookup()
	lookup.people[1] = directory.Person{RealName: "Alice", Nick: "alice"}
	lookup.people[2] = directory.Person{RealName: "Bob", Nick: "bob"}

	first, err := Clean(context.Background(), testDirectory(), lookup, Options{})
	require.NoError(t, err)

	second, err := Clean(context.Background(), first.Directory, lookup, Options{})
	require.NoError(t, err)

	firstYAML, err := directory.Marshal(first.Directory)
	require.NoError(t, err)
	secondYAML, err := directory.Marshal(second.Directory)
	require.NoError(t, err)
	assert.Equal(t, string(firstYAML), string(secondYAML))
}

func TestCleanCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Clean(ctx, testDirectory(), newFakeLookup(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
