// Package annotation contains the pure rules for annotation parent
// references. A parent is a tagged variant: a kind plus an optional
// identifier, not three separate foreign keys. The reference is non-owning
// and exists only for lookup and display grouping.
package annotation

import (
	"fmt"
	"strings"
)

// ParentKind tags which entity an annotation is grouped under.
type ParentKind string

const (
	ParentArchitect ParentKind = "architect"
	ParentBuilder   ParentKind = "builder"
	ParentUtil      ParentKind = "util"
)

// ParentRef is a validated-by-construction reference to an annotation's
// owner. The architect variant carries no identifier because the architect
// is a per-project singleton.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

// Validate checks the kind/identifier pairing rules.
func (r ParentRef) Validate() error {
	switch r.Kind {
	case ParentArchitect:
		if r.ID != "" {
			return fmt.Errorf("architect parent carries no identifier, got %q", r.ID)
		}
	case ParentBuilder, ParentUtil:
		if r.ID == "" {
			return fmt.Errorf("%s parent requires an identifier", r.Kind)
		}
	default:
		return fmt.Errorf("unknown parent kind %q", r.Kind)
	}
	return nil
}

// String renders the reference in the CLI form accepted by ParseParentRef.
func (r ParentRef) String() string {
	if r.Kind == ParentArchitect {
		return string(ParentArchitect)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// ParseParentRef parses "architect", "builder:<id>", or "util:<id>".
func ParseParentRef(s string) (ParentRef, error) {
	kind, id, _ := strings.Cut(s, ":")
	ref := ParentRef{Kind: ParentKind(kind), ID: id}
	if err := ref.Validate(); err != nil {
		return ParentRef{}, fmt.Errorf("invalid parent reference %q: %w", s, err)
	}
	return ref, nil
}
