// Package space implements the space algebra behind pattern-match
// exhaustiveness checking: a Space is the set of runtime values a pattern
// can match (or a scrutinee can take), described by a static type plus
// structural restrictions on its fields. Spaces are immutable values;
// combining them always builds new ones, so checks over a shared type model
// may run concurrently without locking.
package space

import (
	"fmt"
	"hash/fnv"
	"iter"
	"slices"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/exhaust/exerr"
	"github.com/cottand/exhaust/util"
)

// Space is a set of possible runtime values. It is a closed sum: the empty
// space, a type space (a StaticType with field restrictions), or a union.
type Space interface {
	fmt.Stringer
	// Hash is the identity of the space; spaces with equal hashes are
	// treated as the same set of values.
	Hash() uint64

	isSpace()
}

var (
	_ Space = emptySpace{}
	_ Space = typeSpace{}
	_ Space = unionSpace{}
)

// Equal compares two spaces for structural equality.
// As in-depth structural comparison is awkward across the sum's cases, each
// case instead mixes everything that identifies it into Hash.
func Equal(this, other Space) bool {
	return this.Hash() == other.Hash()
}

type emptySpace struct{}

func (emptySpace) isSpace()       {}
func (emptySpace) String() string { return "∅" }
func (emptySpace) Hash() uint64   { return 16777619 } // FNV-1a prime, same trick as any other leaf

var theEmptySpace = emptySpace{}

// Empty is the space matching nothing: the identity of Union and the
// absorbing element of field restrictions.
func Empty() Space { return theEmptySpace }

var noFields = immutable.NewMap[string, Space](nil)

// typeSpace is an atomic space: any instance of typ whose fields satisfy the
// given restrictions. A field name absent from the map is unrestricted,
// which is not the same as restricting it to Empty (that would make the
// whole space empty and is simplified away at construction).
type typeSpace struct {
	typ    StaticType
	fields *immutable.Map[string, Space]
}

func (typeSpace) isSpace() {}

func (s typeSpace) String() string {
	if s.fields.Len() == 0 {
		return s.typ.Name()
	}
	fieldStrs := make([]string, 0, s.fields.Len())
	for _, field := range s.sortedFields() {
		fieldStrs = append(fieldStrs, field.Fst+": "+field.Snd.String())
	}
	rendered := "(" + strings.Join(fieldStrs, ", ") + ")"
	if isShape(s.typ) {
		return rendered
	}
	return s.typ.Name() + rendered
}

func (s typeSpace) Hash() uint64 {
	const prime uint64 = 1099511628211
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(s.typ.Name()))
	hash := hasher.Sum64()
	for _, field := range s.sortedFields() {
		nameHasher := fnv.New64a()
		_, _ = nameHasher.Write([]byte(field.Fst))
		hash = hash*prime ^ nameHasher.Sum64()
		hash = hash*prime ^ field.Snd.Hash()
	}
	return hash
}

// sortedFields returns the restrictions in field-name order. The map itself
// is unordered (names, not positions, are the semantic key); sorting is only
// for deterministic hashing, rendering and splitting.
func (s typeSpace) sortedFields() []util.Pair[string, Space] {
	fields := make([]util.Pair[string, Space], 0, s.fields.Len())
	itr := s.fields.Iterator()
	for !itr.Done() {
		name, restriction, _ := itr.Next()
		fields = append(fields, util.NewPair(name, restriction))
	}
	slices.SortFunc(fields, func(a, b util.Pair[string, Space]) int {
		return strings.Compare(a.Fst, b.Fst)
	})
	return fields
}

func (s typeSpace) restrictionOf(name string) (Space, bool) {
	return s.fields.Get(name)
}

// withField returns a copy of s where name is restricted to restriction.
func (s typeSpace) withField(name string, restriction Space) typeSpace {
	return typeSpace{typ: s.typ, fields: s.fields.Set(name, restriction)}
}

type unionSpace struct {
	// invariant: at least two members, none of which is empty or a union
	members []Space
}

func (unionSpace) isSpace() {}

func (s unionSpace) String() string {
	memberStrs := make([]string, len(s.members))
	for i, member := range s.members {
		memberStrs[i] = member.String()
	}
	return strings.Join(memberStrs, "|")
}

func (s unionSpace) Hash() uint64 {
	var hash uint64 = 2166136261
	for _, member := range s.members {
		hash = hash*31 ^ member.Hash()
	}
	return hash
}

// FromType is the space of every instance of t, with no field restrictions.
func FromType(t StaticType) Space {
	return typeSpace{typ: t, fields: noFields}
}

// RecordOf is the space of instances of t whose fields additionally satisfy
// the given restrictions. Restricting a field t does not have is a contract
// violation on the caller's side. Restricting any field to the empty space
// collapses the whole space to Empty.
func RecordOf(t StaticType, fields map[string]Space) (Space, error) {
	if len(fields) == 0 {
		return FromType(t), nil
	}
	if !t.IsRecord() {
		return nil, exerr.New(exerr.NewNotRecord{TypeName: t.Name()})
	}
	declared := t.RecordFields()
	builder := immutable.NewMapBuilder[string, Space](nil)
	for name, restriction := range fields {
		if _, ok := declared[name]; !ok {
			return nil, exerr.New(exerr.NewUnknownField{TypeName: t.Name(), Field: name})
		}
		if Equal(restriction, Empty()) {
			return Empty(), nil
		}
		builder.Set(name, restriction)
	}
	return typeSpace{typ: t, fields: builder.Map()}, nil
}

// Record is the space of a destructuring pattern that fixes no nominal type,
// only field restrictions: its type is the synthetic record shape observing
// exactly the given names. With no fields it stands for "any record".
func Record(fields map[string]Space) Space {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	shape := SyntheticRecord(names)
	s, err := RecordOf(shape, fields)
	if err != nil {
		// the shape declares every requested name, so this cannot happen
		panic(err)
	}
	return s
}

// Union is the set union of the given spaces. Nested unions are flattened,
// empty members dropped, a single remaining member returned unwrapped, and
// no members at all yield Empty.
func Union(spaces ...Space) Space {
	alts := make([]iter.Seq[Space], len(spaces))
	for i, s := range spaces {
		alts[i] = alternatives(s)
	}
	var flat []Space
	for s := range util.ConcatIter(alts...) {
		flat = append(flat, s)
	}
	switch len(flat) {
	case 0:
		return Empty()
	case 1:
		return flat[0]
	default:
		return unionSpace{members: flat}
	}
}

// alternatives iterates the non-empty atomic constituents of s.
func alternatives(s Space) iter.Seq[Space] {
	switch s := s.(type) {
	case emptySpace:
		return util.EmptyIter[Space]()
	case unionSpace:
		return slices.Values(s.members)
	default:
		return util.SingleIter(s)
	}
}
