package filter

import "fmt"

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// MaxTerms caps the values of a single terms condition (one per repository group member).
const MaxTerms = 256

// Expression is a conjunction of exact-match conditions.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Scope tells whether a field lives on the component or on one of its assets.
type Scope int

const (
	// ScopeComponent fields are indexed once per component (groupId, artifactId, base version).
	ScopeComponent Scope = iota
	// ScopeAsset fields are indexed per asset (classifier, extension).
	ScopeAsset
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeAsset {
		return "asset"
	}
	return "component"
}

// Condition is a single tag clause: the field must equal one of the values.
type Condition struct {
	key    string
	scope  Scope
	values []string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key string, scope Scope, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, scope: scope, values: []string{value}}, nil
}

// NewTerms creates a condition matching any of the given values.
func NewTerms(key string, scope Scope, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	if len(values) > MaxTerms {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxTerms)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value for key %q", key)
		}
	}
	vals := make([]string, len(values))
	copy(vals, values)
	return Condition{key: key, scope: scope, values: vals}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Scope returns where the field is indexed.
func (c Condition) Scope() Scope { return c.scope }

// Values returns the accepted values.
func (c Condition) Values() []string { return c.values }

// IsTerms reports whether more than one value is accepted.
func (c Condition) IsTerms() bool { return len(c.values) > 1 }
