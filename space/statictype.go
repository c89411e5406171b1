package space

import (
	"slices"
	"strings"
)

// StaticType is the engine's view of one already-resolved type. Instances
// are produced by the surrounding type-resolution layer (see the model
// package for the one used in tests and the CLI); the algebra only ever
// queries them and never mutates or constructs model types itself.
type StaticType interface {
	Name() string
	// IsSealed reports whether the direct subtypes of this type form a
	// complete partition of its runtime instances.
	IsSealed() bool
	IsRecord() bool
	// DirectSubtypes is only meaningful when IsSealed; the returned order is
	// declaration order and determines witness determinism.
	DirectSubtypes() []StaticType
	RecordFields() map[string]StaticType
	// IsSubtypeOf reports the reflexive, transitive subtype relation between
	// nominal types. Callers should prefer the package-level check, which
	// also understands the top type and synthetic record shapes.
	IsSubtypeOf(other StaticType) bool
}

// topType is the supertype of every value. It backs the `_` pattern and the
// fields of synthetic record shapes, which carry no declared field types.
type topType struct{}

// Top matches any value whatsoever.
var Top StaticType = topType{}

func (topType) Name() string                      { return "_" }
func (topType) IsSealed() bool                    { return false }
func (topType) IsRecord() bool                    { return false }
func (topType) DirectSubtypes() []StaticType      { return nil }
func (topType) RecordFields() map[string]StaticType { return nil }
func (topType) IsSubtypeOf(other StaticType) bool { return IsTop(other) }

func IsTop(t StaticType) bool {
	_, ok := t.(topType)
	return ok
}

// recordShape is the synthetic type behind Record literals: a destructuring
// pattern like `(x: p1, y: p2)` does not fix a nominal type, only the set of
// fields it observes. Shapes use width subtyping: observing fewer fields
// makes a wider shape.
type recordShape struct {
	names []string // sorted, unique
}

// SyntheticRecord builds the type of a record pattern observing exactly the
// given field names.
func SyntheticRecord(names []string) StaticType {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return recordShape{names: sorted}
}

func (t recordShape) Name() string {
	return "(" + strings.Join(t.names, ", ") + ")"
}
func (t recordShape) IsSealed() bool               { return false }
func (t recordShape) IsRecord() bool               { return true }
func (t recordShape) DirectSubtypes() []StaticType { return nil }

func (t recordShape) RecordFields() map[string]StaticType {
	fields := make(map[string]StaticType, len(t.names))
	for _, name := range t.names {
		fields[name] = Top
	}
	return fields
}

func (t recordShape) IsSubtypeOf(other StaticType) bool {
	return subtypeOf(t, other)
}

func isShape(t StaticType) bool {
	_, ok := t.(recordShape)
	return ok
}

// subtypeOf is the subtype check the algebra uses everywhere: it layers the
// top type and synthetic record shapes on top of the nominal relation the
// model provides.
func subtypeOf(a, b StaticType) bool {
	if IsTop(b) {
		return true
	}
	if IsTop(a) {
		return false
	}
	if shape, ok := b.(recordShape); ok {
		// anything exposing at least the shape's fields is an instance of it
		if !a.IsRecord() {
			return false
		}
		fields := a.RecordFields()
		for _, name := range shape.names {
			if _, ok := fields[name]; !ok {
				return false
			}
		}
		return true
	}
	if _, ok := a.(recordShape); ok {
		// a bare shape is never a nominal type
		return false
	}
	return a.IsSubtypeOf(b)
}
