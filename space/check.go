package space

import (
	"log/slog"
	"slices"

	"github.com/cottand/exhaust/exerr"
	"github.com/cottand/exhaust/internal/log"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With(slog.String("section", "check"))

// errUnknownSpaceKind guards the closed sum: Space has unexported
// implementations only, so this is unreachable unless a new kind is added
// without teaching the checker about it.
var errUnknownSpaceKind = errors.New("space kind outside the closed sum")

// Result is the outcome of one exhaustiveness query.
type Result struct {
	Exhaustive bool
	// Witness is one uncovered shape when not exhaustive, nil otherwise.
	Witness *Witness
	// Redundant holds the indices of cases that covered no part of the
	// value. Only populated when Exhaustive.
	Redundant []int
}

// Check decides whether the union of cases covers every possible value of
// value. Case order never changes the boolean outcome, but it does decide
// which witness a non-exhaustive result reports, and which of several
// mutually redundant cases is flagged.
//
// The only errors are contract violations (see exerr): a space restricting a
// field its type does not have. Missing cases in the checked program are a
// Result, not an error.
func Check(value Space, cases []Space) (Result, error) {
	c := &checker{cases: cases, used: make([]bool, len(cases))}
	covered, witness, err := c.cover(value, set.New[string](4), "")
	if err != nil {
		return Result{}, err
	}
	if !covered {
		return Result{Exhaustive: false, Witness: witness}, nil
	}
	res := Result{Exhaustive: true}
	for i, used := range c.used {
		if !used {
			res.Redundant = append(res.Redundant, i)
		}
	}
	return res, nil
}

// IsExhaustive is Check reduced to its boolean. It panics on malformed
// input, which always indicates a bug in the calling type-resolution layer.
func IsExhaustive(value Space, cases []Space) bool {
	res, err := Check(value, cases)
	if err != nil {
		panic(exerr.FormatWithCode(err.(exerr.CheckError)))
	}
	return res.Exhaustive
}

type checker struct {
	cases []Space
	used  []bool
}

// cover decides whether the case list covers all of v. The guard carries
// "path!type" markers for sealed types already expanded along the current
// field path, so cyclic sealed declarations cannot expand forever.
func (c *checker) cover(v Space, guard *set.Set[string], path string) (bool, *Witness, error) {
	switch v := v.(type) {
	case emptySpace:
		return true, nil, nil
	case unionSpace:
		// a union is covered iff every member is
		for _, member := range v.members {
			covered, witness, err := c.cover(member, guard, path)
			if err != nil || !covered {
				return covered, witness, err
			}
		}
		return true, nil, nil
	case typeSpace:
		return c.coverType(v, guard, path)
	default:
		return false, nil, exerr.New(exerr.Unclassified{From: errUnknownSpaceKind})
	}
}

func (c *checker) coverType(v typeSpace, guard *set.Set[string], path string) (bool, *Witness, error) {
	// a single case that is at least as wide as v settles it
	for i, cs := range c.cases {
		covered, err := c.covers(cs, v)
		if err != nil {
			return false, nil, err
		}
		if covered {
			c.used[i] = true
			return true, nil, nil
		}
	}

	// no single case is wide enough: refine v into variants whose union is v
	// and require every variant to be covered
	variants, guard, err := c.splitType(v, c.cases, guard, path)
	if err != nil {
		return false, nil, err
	}
	if variants == nil {
		logger.Debug("uncovered leaf", slog.String("space", v.String()), slog.String("path", path))
		return false, witnessOf(v), nil
	}
	for _, variant := range variants {
		covered, witness, err := c.cover(variant, guard, path)
		if err != nil || !covered {
			return covered, witness, err
		}
	}
	return true, nil, nil
}

// splitType refines v one step: a sealed type becomes one variant per direct
// subtype (each inheriting v's field restrictions), otherwise the first
// splittable relevant field is case-split. Returns nil variants when v is
// already a leaf shape that no further splitting can refine.
func (c *checker) splitType(v typeSpace, cands []Space, guard *set.Set[string], path string) ([]Space, *set.Set[string], error) {
	marker := path + "!" + v.typ.Name()
	if v.typ.IsSealed() && !guard.Contains(marker) {
		next := guard.Copy()
		next.Insert(marker)
		subtypes := v.typ.DirectSubtypes()
		variants := make([]Space, len(subtypes))
		for i, subtype := range subtypes {
			variants[i] = typeSpace{typ: subtype, fields: v.fields}
		}
		logger.Debug("sealed expansion",
			slog.String("type", v.typ.Name()),
			slog.String("path", path),
			slog.Int("subtypes", len(variants)),
		)
		return variants, next, nil
	}

	overlapping := overlappingCases(v, cands)
	for _, name := range c.relevantFields(v, overlapping) {
		restriction, err := fieldOf(v, name, overlapping)
		if err != nil {
			return nil, guard, err
		}
		projected := projectField(overlapping, name)
		alts, next, err := c.splitSpace(restriction, projected, guard, path+"."+name)
		if err != nil {
			return nil, guard, err
		}
		if alts == nil {
			continue
		}
		logger.Debug("field split",
			slog.String("space", v.String()),
			slog.String("field", name),
			slog.Int("alternatives", len(alts)),
		)
		variants := make([]Space, len(alts))
		for i, alt := range alts {
			variants[i] = v.withField(name, alt)
		}
		return variants, next, nil
	}
	return nil, guard, nil
}

// splitSpace refines a field restriction: unions distribute into their
// members, atomic spaces split like a value does.
func (c *checker) splitSpace(s Space, cands []Space, guard *set.Set[string], path string) ([]Space, *set.Set[string], error) {
	switch s := s.(type) {
	case unionSpace:
		return s.members, guard, nil
	case typeSpace:
		return c.splitType(s, cands, guard, path)
	default:
		return nil, guard, nil
	}
}

// relevantFields lists, in deterministic order, the field names worth
// splitting on: those v restricts, plus those any overlapping case restricts
// that v's values carry, either declared on v's type or inherited from a
// case's supertype (a sealed expansion does not make subtypes redeclare the
// parent's fields). Fields only narrower cases know about cannot help cover
// v and are skipped.
func (c *checker) relevantFields(v typeSpace, overlapping []typeSpace) []string {
	names := set.New[string](v.fields.Len())
	for _, field := range v.sortedFields() {
		names.Insert(field.Fst)
	}
	declared := v.typ.RecordFields()
	for _, cand := range overlapping {
		inherited := subtypeOf(v.typ, cand.typ)
		candDeclared := cand.typ.RecordFields()
		itr := cand.fields.Iterator()
		for !itr.Done() {
			name, _, _ := itr.Next()
			if _, ok := declared[name]; ok {
				names.Insert(name)
				continue
			}
			if _, ok := candDeclared[name]; ok && inherited {
				names.Insert(name)
			}
		}
	}
	sorted := names.Slice()
	slices.Sort(sorted)
	return sorted
}

// overlappingCases flattens cands into the atomic case spaces whose type
// overlaps v's (either direction of the subtype relation), the only ones
// that can cover part of v.
func overlappingCases(v typeSpace, cands []Space) []typeSpace {
	var out []typeSpace
	for _, cand := range cands {
		for alt := range alternatives(cand) {
			ts, ok := alt.(typeSpace)
			if !ok {
				continue
			}
			if subtypeOf(v.typ, ts.typ) || subtypeOf(ts.typ, v.typ) {
				out = append(out, ts)
			}
		}
	}
	return out
}

// projectField gathers the restrictions the given cases place on one field.
// Cases without a restriction on it constrain nothing there and contribute
// no projection.
func projectField(overlapping []typeSpace, name string) []Space {
	var out []Space
	for _, cand := range overlapping {
		if restriction, ok := cand.restrictionOf(name); ok {
			out = append(out, restriction)
		}
	}
	return out
}

// covers reports whether cs, a single case, matches every value in v. This
// is a pointwise check: it is complete only once v has been split down to
// leaf shapes, which is exactly how coverType uses it.
func (c *checker) covers(cs Space, v Space) (bool, error) {
	switch v := v.(type) {
	case emptySpace:
		return true, nil
	case unionSpace:
		for _, member := range v.members {
			covered, err := c.covers(cs, member)
			if err != nil || !covered {
				return covered, err
			}
		}
		return true, nil
	case typeSpace:
		switch cs := cs.(type) {
		case emptySpace:
			return false, nil
		case unionSpace:
			for _, member := range cs.members {
				covered, err := c.covers(member, v)
				if err != nil {
					return false, err
				}
				if covered {
					return true, nil
				}
			}
			return false, nil
		case typeSpace:
			if !subtypeOf(v.typ, cs.typ) {
				return false, nil
			}
			for _, field := range cs.sortedFields() {
				restriction, err := fieldOfEither(v, cs, field.Fst)
				if err != nil {
					return false, err
				}
				covered, err := c.covers(field.Snd, restriction)
				if err != nil || !covered {
					return covered, err
				}
			}
			return true, nil
		}
	}
	return false, exerr.New(exerr.Unclassified{From: errUnknownSpaceKind})
}

// fieldOf resolves v's restriction on a field, defaulting to the whole space
// of the field's declared type when v leaves it unrestricted. The declaration
// may live on v's type or, for a field relevantFields sourced from a case
// naming a supertype, on that case's type.
func fieldOf(v typeSpace, name string, overlapping []typeSpace) (Space, error) {
	if restriction, ok := v.restrictionOf(name); ok {
		return restriction, nil
	}
	if declared, ok := v.typ.RecordFields()[name]; ok {
		return FromType(declared), nil
	}
	for _, cand := range overlapping {
		if declared, ok := cand.typ.RecordFields()[name]; ok && subtypeOf(v.typ, cand.typ) {
			return FromType(declared), nil
		}
	}
	return nil, exerr.New(exerr.NewUnknownField{TypeName: v.typ.Name(), Field: name})
}

// fieldOfEither is fieldOf with a fallback to the case's type: a subtype is
// not required to redeclare the fields of the sealed supertype the case
// names, but the field still has a declared type on the case's side.
func fieldOfEither(v, cs typeSpace, name string) (Space, error) {
	if restriction, ok := v.restrictionOf(name); ok {
		return restriction, nil
	}
	if declared, ok := v.typ.RecordFields()[name]; ok {
		return FromType(declared), nil
	}
	if declared, ok := cs.typ.RecordFields()[name]; ok {
		return FromType(declared), nil
	}
	return nil, exerr.New(exerr.NewUnknownField{TypeName: cs.typ.Name(), Field: name})
}
