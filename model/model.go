// Package model is a minimal producer of the space.StaticType contract: a
// universe of nominal type declarations with sealed hierarchies and record
// fields, resolved once and then immutable. In a real embedding this role is
// played by a compiler's type-resolution layer; here it backs the CLI and
// the test-suite.
package model

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/cottand/exhaust/exerr"
	"github.com/cottand/exhaust/internal/log"
	"github.com/cottand/exhaust/space"
	goset "github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
)

var logger = log.DefaultLogger.With(slog.String("section", "model"))

var errAlreadyResolved = errors.New("universe is already resolved")

// TypeDecl declares one type by name. A non-empty Subtypes list marks the
// type sealed, with the given direct subtypes in declaration order. Fields
// maps field names to the names of their types.
type TypeDecl struct {
	Name     string
	Subtypes []string
	Fields   map[string]string
}

// Universe holds type declarations and, after Resolve, hands out immutable
// space.StaticType values for them.
type Universe struct {
	decls    map[string]*Decl
	order    []string
	resolved bool
}

func NewUniverse() *Universe {
	return &Universe{decls: make(map[string]*Decl)}
}

// Declare records a declaration. All names it mentions must themselves be
// declared by the time Resolve runs.
func (u *Universe) Declare(decl TypeDecl) error {
	if u.resolved {
		return exerr.New(exerr.Unclassified{From: errAlreadyResolved})
	}
	if _, ok := u.decls[decl.Name]; ok {
		return exerr.New(exerr.NewDuplicateName{Kind: "type", Name: decl.Name})
	}
	u.decls[decl.Name] = &Decl{
		name:         decl.Name,
		subtypeNames: slices.Clone(decl.Subtypes),
		fieldNames:   decl.Fields,
	}
	u.order = append(u.order, decl.Name)
	return nil
}

// Resolve links every declaration and freezes the universe. It checks that
// sealed subtype lists form a partition: a type declared as the direct
// subtype of two sealed types (or twice under one) would make instance
// counting ambiguous.
func (u *Universe) Resolve() error {
	var allSubtypes []string
	for _, name := range u.order {
		allSubtypes = append(allSubtypes, u.decls[name].subtypeNames...)
	}
	sort.Strings(allSubtypes)
	if unique := set.Uniq(sort.StringSlice(allSubtypes)); unique != len(allSubtypes) {
		return exerr.New(exerr.NewDuplicateName{Kind: "subtype", Name: u.findDuplicateSubtype()})
	}

	for _, name := range u.order {
		decl := u.decls[name]
		for _, subName := range decl.subtypeNames {
			sub, ok := u.decls[subName]
			if !ok {
				return exerr.New(exerr.NewUndefinedType{Name: subName})
			}
			decl.subtypes = append(decl.subtypes, sub)
		}
		if len(decl.fieldNames) > 0 {
			decl.fields = make(map[string]space.StaticType, len(decl.fieldNames))
			for fieldName, typeName := range decl.fieldNames {
				fieldType, ok := u.decls[typeName]
				if !ok {
					return exerr.New(exerr.NewUndefinedType{Name: typeName})
				}
				decl.fields[fieldName] = fieldType
			}
		}
	}

	// ancestor sets give the reflexive-transitive subtype relation
	parents := make(map[string][]string)
	for _, name := range u.order {
		for _, subName := range u.decls[name].subtypeNames {
			parents[subName] = append(parents[subName], name)
		}
	}
	for _, name := range u.order {
		ancestors := goset.New[string](len(parents[name]))
		frontier := slices.Clone(parents[name])
		for len(frontier) > 0 {
			next := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			if !ancestors.Insert(next) {
				continue
			}
			frontier = append(frontier, parents[next]...)
		}
		u.decls[name].ancestors = ancestors
	}

	u.resolved = true
	logger.Debug("resolved universe", slog.Int("types", len(u.order)))
	return nil
}

func (u *Universe) findDuplicateSubtype() string {
	var all []string
	for _, name := range u.order {
		all = append(all, u.decls[name].subtypeNames...)
	}
	sort.Strings(all)
	for i := 1; i < len(all); i++ {
		if all[i] == all[i-1] {
			return all[i]
		}
	}
	return ""
}

// Type looks a declaration up by name. Only valid after Resolve; a method
// value of this doubles as the lookup for space.Parse.
func (u *Universe) Type(name string) (space.StaticType, bool) {
	if !u.resolved {
		return nil, false
	}
	decl, ok := u.decls[name]
	return decl, ok
}

var _ space.StaticType = (*Decl)(nil)

// Decl is one resolved type declaration.
type Decl struct {
	name         string
	subtypeNames []string
	fieldNames   map[string]string
	subtypes     []*Decl
	fields       map[string]space.StaticType
	ancestors    *goset.Set[string]
}

func (d *Decl) Name() string   { return d.name }
func (d *Decl) IsSealed() bool { return len(d.subtypeNames) > 0 }
func (d *Decl) IsRecord() bool { return len(d.fieldNames) > 0 }

func (d *Decl) DirectSubtypes() []space.StaticType {
	subtypes := make([]space.StaticType, len(d.subtypes))
	for i, sub := range d.subtypes {
		subtypes[i] = sub
	}
	return subtypes
}

func (d *Decl) RecordFields() map[string]space.StaticType {
	return d.fields
}

func (d *Decl) IsSubtypeOf(other space.StaticType) bool {
	if space.IsTop(other) {
		return true
	}
	if d.name == other.Name() {
		return true
	}
	return d.ancestors.Contains(other.Name())
}
