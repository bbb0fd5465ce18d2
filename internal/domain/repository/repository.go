package repository

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FormatMaven2 is the only repository format the query service serves.
const FormatMaven2 = "maven2"

// Type distinguishes hosted, proxy, and group repositories.
type Type string

const (
	// TypeHosted stores artifacts directly.
	TypeHosted Type = "hosted"
	// TypeProxy caches artifacts from a remote.
	TypeProxy Type = "proxy"
	// TypeGroup aggregates other repositories.
	TypeGroup Type = "group"
)

// IsValid checks if the repository type is supported.
func (t Type) IsValid() bool {
	return t == TypeHosted || t == TypeProxy || t == TypeGroup
}

// Repository is a named artifact repository (immutable value object).
type Repository struct {
	name     string
	format   string
	repoType Type
	members  []string
}

// New validates and creates a Repository. Only group repositories carry members.
func New(name, format string, repoType Type, members []string) (Repository, error) {
	if repoType == "" {
		repoType = TypeHosted
	}
	if !repoType.IsValid() {
		return Repository{}, fmt.Errorf("invalid repository type: %q", repoType)
	}
	if name == "" {
		return Repository{}, fmt.Errorf("repository name is required")
	}
	if len(name) > 128 {
		return Repository{}, fmt.Errorf("repository name too long (max 128)")
	}
	if !nameRegex.MatchString(name) {
		return Repository{}, fmt.Errorf("repository name must be alphanumeric with dots, underscores and hyphens")
	}
	if format == "" {
		return Repository{}, fmt.Errorf("repository %s: format is required", name)
	}
	if repoType == TypeGroup && len(members) == 0 {
		return Repository{}, fmt.Errorf("group repository %s has no members", name)
	}
	if repoType != TypeGroup && len(members) > 0 {
		return Repository{}, fmt.Errorf("%s repository %s cannot have members", repoType, name)
	}

	m := make([]string, len(members))
	copy(m, members)

	return Repository{name: name, format: format, repoType: repoType, members: m}, nil
}

// Name returns the repository name.
func (r Repository) Name() string { return r.name }

// Format returns the repository format, e.g. "maven2".
func (r Repository) Format() string { return r.format }

// Type returns the repository type.
func (r Repository) Type() Type { return r.repoType }

// IsGroup reports whether the repository aggregates members.
func (r Repository) IsGroup() bool { return r.repoType == TypeGroup }

// Members returns a copy of the directly declared member names.
func (r Repository) Members() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}
