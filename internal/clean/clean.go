// Package clean normalizes a module directory.
//
// Cleaning enriches ID-only person records through the identity lookup,
// creates missing machine names, drops orphaned person records, and sorts
// modules, submodules and people deterministically so saved registries diff
// cleanly. The input directory is never mutated; Clean works on a deep copy
// and returns it. Given stable lookup responses the operation is idempotent.
//
// Lookups are independent network calls, so a batch fans out over a bounded
// worker pool. A failed lookup is recorded per ID and leaves that record
// ID-only; it never aborts normalization of the rest of the tree.
package clean

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/logging"
)

// Lookup resolves a Bugzilla ID to an identity record. Implementations
// must be safe for concurrent use.
type Lookup interface {
	UserByID(ctx context.Context, id int) (directory.Person, error)
}

// Options configures a clean run.
type Options struct {
	// Workers bounds the lookup fan-out. Defaults to 4.
	Workers int
	// Timeout applies to each individual lookup. Defaults to 30s.
	Timeout time.Duration
	Logger  *logging.Logger
}

// LookupFailure records one identity lookup that did not succeed.
type LookupFailure struct {
	BMOID int
	Err   error
}

// Result is the outcome of a clean run: the normalized directory plus the
// per-ID lookup failures, if any.
type Result struct {
	Directory *directory.Directory
	Failures  []LookupFailure
}

// Clean normalizes d and returns the result. The returned directory is a
// deep copy; d itself is left untouched.
func Clean(ctx context.Context, d *directory.Directory, lookup Lookup, opts Options) (*Result, error) {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	out := d.Clone()

	generateMachineNames(out)
	ensurePersonRecords(out)
	removeOrphans(out)

	failures, err := enrichPeople(ctx, out, lookup, opts, logger)
	if err != nil {
		return nil, err
	}

	sortModules(out.Modules)
	sortPeople(out.People)

	return &Result{Directory: out, Failures: failures}, nil
}

// generateMachineNames fills in machine names derived from display names.
func generateMachineNames(d *directory.Directory) {
	for _, e := range d.Flatten() {
		if e.Module.MachineName == "" && e.Module.Name != "" {
			e.Module.MachineName = directory.GenerateMachineName(e.Module.Name)
		}
	}
}

// ensurePersonRecords adds an ID-only record for every owner or peer
// reference without one, and collapses duplicate records for the same ID.
func ensurePersonRecords(d *directory.Directory) {
	known := make(map[int]bool)
	deduped := d.People[:0]
	for _, p := range d.People {
		if known[p.BMOID] {
			continue
		}
		known[p.BMOID] = true
		deduped = append(deduped, p)
	}
	d.People = deduped

	for _, id := range d.ReferencedIDs() {
		if !known[id] {
			known[id] = true
			d.People = append(d.People, directory.Person{BMOID: id})
		}
	}
}

// removeOrphans drops person records no module references.
func removeOrphans(d *directory.Directory) {
	referenced := make(map[int]bool)
	for _, id := range d.ReferencedIDs() {
		referenced[id] = true
	}

	kept := d.People[:0]
	for _, p := range d.People {
		if referenced[p.BMOID] {
			kept = append(kept, p)
		}
	}
	d.People = kept
}

// enrichPeople resolves unresolved records through the lookup, one call per
// unique ID, fanned out over a bounded worker pool.
func enrichPeople(ctx context.Context, d *directory.Directory, lookup Lookup, opts Options, logger *logging.Logger) ([]LookupFailure, error) {
	var unresolved []int
	for _, p := range d.People {
		if !p.Resolved() {
			unresolved = append(unresolved, p.BMOID)
		}
	}
	if len(unresolved) == 0 {
		return nil, nil
	}
	logger.Debug("resolving people", "count", len(unresolved), "workers", opts.Workers)

	type outcome struct {
		id     int
		person directory.Person
		err    error
	}

	ids := make(chan int)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				lookupCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
				person, err := lookup.UserByID(lookupCtx, id)
				cancel()
				outcomes <- outcome{id: id, person: person, err: err}
			}
		}()
	}

	go func() {
		defer close(ids)
		for _, id := range unresolved {
			select {
			case ids <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	resolved := make(map[int]directory.Person)
	var failures []LookupFailure
	for o := range outcomes {
		if o.err != nil {
			logger.Warn("identity lookup failed", "bmo_id", o.id, "error", o.err.Error())
			failures = append(failures, LookupFailure{BMOID: o.id, Err: o.err})
			continue
		}
		resolved[o.id] = o.person
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, p := range d.People {
		if person, ok := resolved[p.BMOID]; ok {
			person.BMOID = p.BMOID
			d.People[i] = person
		}
	}

	// Deterministic failure order for reporting.
	sort.Slice(failures, func(i, j int) bool { return failures[i].BMOID < failures[j].BMOID })
	return failures, nil
}

// sortModules orders modules and their submodules by machine name,
// recursively.
func sortModules(modules []*directory.Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].MachineName < modules[j].MachineName
	})
	for _, m := range modules {
		sortModules(m.Submodules)
	}
}

// sortPeople orders person records by nick, case-insensitively, using
// collation so accented nicks sort the way a human expects. Ties and
// nickless records fall back to ID order.
func sortPeople(people []directory.Person) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(people, func(i, j int) bool {
		ni, nj := people[i].Nick, people[j].Nick
		switch {
		case ni == "" && nj == "":
			return people[i].BMOID < people[j].BMOID
		case ni == "":
			return false
		case nj == "":
			return true
		}
		if cmp := c.CompareString(ni, nj); cmp != 0 {
			return cmp < 0
		}
		if !strings.EqualFold(ni, nj) {
			return ni < nj
		}
		return people[i].BMOID < people[j].BMOID
	})
}
