// Package validate checks structural invariants of a module directory.
//
// Validation collects every issue it finds instead of failing fast, never
// mutates the tree, and is idempotent: two runs over unchanged state yield
// identical issue lists. Error-severity issues should fail a CI run;
// warnings are reported but do not block.
package validate

import (
	"fmt"

	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/resolve"
)

// Severity classifies an issue.
type Severity int

const (
	// Warning issues are reported but do not fail validation.
	Warning Severity = iota
	// Error issues fail validation.
	Error
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind identifies the class of a validation issue.
type Kind string

const (
	KindDuplicateMachineName Kind = "duplicate-machine-name"
	KindMissingField         Kind = "missing-field"
	KindUnknownPerson        Kind = "unknown-person"
	KindNoOwners             Kind = "no-owners"
	KindBadPattern           Kind = "bad-pattern"
)

// Issue is one structural problem found in the directory.
type Issue struct {
	Kind        Kind
	Severity    Severity
	MachineName string
	Message     string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Kind, i.Message)
}

// HasErrors reports whether any issue carries Error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == Error {
			return true
		}
	}
	return false
}

// Validate runs every structural check over the directory and returns the
// collected issues in deterministic order.
func Validate(d *directory.Directory) []Issue {
	var issues []Issue

	entries := d.Flatten()
	people := d.PeopleByID()

	// Duplicate machine names across the full flattened set: one issue
	// per duplicated name, reported at its second occurrence.
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	for _, e := range entries {
		name := e.Module.MachineName
		if name == "" {
			continue
		}
		if seen[name] && !reported[name] {
			reported[name] = true
			issues = append(issues, Issue{
				Kind:        KindDuplicateMachineName,
				Severity:    Error,
				MachineName: name,
				Message:     fmt.Sprintf("machine name %q is used by more than one module", name),
			})
		}
		seen[name] = true
	}

	for _, e := range entries {
		issues = append(issues, checkEntry(e, people)...)
	}

	// Uncompilable patterns, as reported by the matcher through the
	// resolver's compiled view.
	for _, bad := range resolve.New(d).BadPatterns() {
		severity := Error
		role := "include"
		if bad.Exclude {
			// A broken exclude cannot hide paths it was meant to
			// hide, but it does not grant ownership either.
			severity = Warning
			role = "exclude"
		}
		issues = append(issues, Issue{
			Kind:        KindBadPattern,
			Severity:    severity,
			MachineName: bad.MachineName,
			Message:     fmt.Sprintf("%s pattern %q does not compile", role, bad.Pattern),
		})
	}

	return issues
}

func checkEntry(e directory.Entry, people map[int]directory.Person) []Issue {
	var issues []Issue
	m := e.Module
	name := m.MachineName
	if name == "" {
		name = m.Name
	}

	if m.MachineName == "" {
		issues = append(issues, Issue{
			Kind:        KindMissingField,
			Severity:    Error,
			MachineName: name,
			Message:     fmt.Sprintf("module %q has no machine_name", m.Name),
		})
	}
	if m.Name == "" {
		issues = append(issues, Issue{
			Kind:        KindMissingField,
			Severity:    Error,
			MachineName: name,
			Message:     fmt.Sprintf("module %q has no name", name),
		})
	}
	// Effective patterns: a submodule may legitimately inherit its
	// parent's includes.
	if len(e.Includes()) == 0 {
		issues = append(issues, Issue{
			Kind:        KindMissingField,
			Severity:    Error,
			MachineName: name,
			Message:     fmt.Sprintf("module %q has no include patterns", name),
		})
	}

	for _, ref := range m.Owners {
		if _, ok := people[ref.BMOID]; !ok {
			issues = append(issues, Issue{
				Kind:        KindUnknownPerson,
				Severity:    Error,
				MachineName: name,
				Message:     fmt.Sprintf("module %q owner bmo_id %d has no person record", name, ref.BMOID),
			})
		}
	}
	for _, ref := range m.Peers {
		if _, ok := people[ref.BMOID]; !ok {
			issues = append(issues, Issue{
				Kind:        KindUnknownPerson,
				Severity:    Error,
				MachineName: name,
				Message:     fmt.Sprintf("module %q peer bmo_id %d has no person record", name, ref.BMOID),
			})
		}
	}

	if len(e.Owners()) == 0 {
		issues = append(issues, Issue{
			Kind:        KindNoOwners,
			Severity:    Warning,
			MachineName: name,
			Message:     fmt.Sprintf("module %q has no owners", name),
		})
	}

	return issues
}
