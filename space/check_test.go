package space_test

import (
	"testing"

	"github.com/cottand/exhaust/model"
	"github.com/cottand/exhaust/space"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func universe(t *testing.T, decls ...model.TypeDecl) *model.Universe {
	t.Helper()
	u := model.NewUniverse()
	for _, decl := range decls {
		require.NoError(t, u.Declare(decl))
	}
	require.NoError(t, u.Resolve())
	return u
}

func parse(t *testing.T, u *model.Universe, src string) space.Space {
	t.Helper()
	s, err := space.Parse(src, u.Type)
	require.NoError(t, err, "parsing %q", src)
	return s
}

func parseAll(t *testing.T, u *model.Universe, srcs ...string) []space.Space {
	t.Helper()
	spaces := make([]space.Space, len(srcs))
	for i, src := range srcs {
		spaces[i] = parse(t, u, src)
	}
	return spaces
}

func orderingUniverse(t *testing.T) *model.Universe {
	return universe(t,
		model.TypeDecl{Name: "Ordering", Subtypes: []string{"Less", "Equal", "Greater"}},
		model.TypeDecl{Name: "Less"},
		model.TypeDecl{Name: "Equal"},
		model.TypeDecl{Name: "Greater"},
	)
}

func pairUniverse(t *testing.T) *model.Universe {
	return universe(t,
		model.TypeDecl{Name: "X", Subtypes: []string{"X1", "X2"}},
		model.TypeDecl{Name: "X1"},
		model.TypeDecl{Name: "X2"},
		model.TypeDecl{Name: "Y", Subtypes: []string{"Y1", "Y2"}},
		model.TypeDecl{Name: "Y1"},
		model.TypeDecl{Name: "Y2"},
		model.TypeDecl{Name: "Pair", Fields: map[string]string{"x": "X", "y": "Y"}},
	)
}

func TestSealedExpansion(t *testing.T) {
	u := orderingUniverse(t)

	testCases := []struct {
		name       string
		cases      []string
		exhaustive bool
		witness    string
	}{
		{name: "allThree", cases: []string{"Less", "Equal", "Greater"}, exhaustive: true},
		{name: "missingEqual", cases: []string{"Less", "Greater"}, exhaustive: false, witness: "Equal"},
		{name: "missingLess", cases: []string{"Equal", "Greater"}, exhaustive: false, witness: "Less"},
		{name: "onlyLess", cases: []string{"Less"}, exhaustive: false, witness: "Equal"},
		{name: "supertypeItself", cases: []string{"Ordering"}, exhaustive: true},
		{name: "top", cases: []string{"_"}, exhaustive: true},
		{name: "noCases", cases: nil, exhaustive: false, witness: "Less"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			res, err := space.Check(parse(t, u, "Ordering"), parseAll(t, u, testCase.cases...))
			require.NoError(t, err)
			assert.Equal(t, testCase.exhaustive, res.Exhaustive)
			if !testCase.exhaustive {
				require.NotNil(t, res.Witness)
				assert.Equal(t, testCase.witness, res.Witness.String())
			}
		})
	}
}

// adding cases never removes coverage
func TestMonotonicity(t *testing.T) {
	u := orderingUniverse(t)
	value := parse(t, u, "Ordering")
	covering := parseAll(t, u, "Less", "Equal", "Greater")

	for _, extra := range []string{"Less", "Ordering", "Equal|Greater", "∅", "_"} {
		t.Run(extra, func(t *testing.T) {
			res, err := space.Check(value, append(parseAll(t, u, "Less", "Equal", "Greater"), parse(t, u, extra)))
			require.NoError(t, err)
			assert.True(t, res.Exhaustive)
		})
	}

	res, err := space.Check(value, covering)
	require.NoError(t, err)
	assert.True(t, res.Exhaustive)
}

// a minimal covering set stops being exhaustive when any member is removed
func TestMinimalCover(t *testing.T) {
	u := orderingUniverse(t)
	value := parse(t, u, "Ordering")
	covering := parseAll(t, u, "Less", "Equal", "Greater")

	for skip := range covering {
		var without []space.Space
		for i, c := range covering {
			if i != skip {
				without = append(without, c)
			}
		}
		res, err := space.Check(value, without)
		require.NoError(t, err)
		assert.False(t, res.Exhaustive, "removing case %d should break coverage", skip)
	}
}

func TestRecordFieldInteraction(t *testing.T) {
	u := pairUniverse(t)

	testCases := []struct {
		name       string
		value      string
		cases      []string
		exhaustive bool
		witness    string
	}{
		{
			name:  "fullGrid",
			value: "Pair",
			cases: []string{
				"Pair(x: X1, y: Y1)", "Pair(x: X1, y: Y2)",
				"Pair(x: X2, y: Y1)", "Pair(x: X2, y: Y2)",
			},
			exhaustive: true,
		},
		{
			name:       "diagonalIsNotEnough",
			value:      "Pair",
			cases:      []string{"Pair(x: X1, y: Y1)", "Pair(x: X2, y: Y2)"},
			exhaustive: false,
			witness:    "Pair(x: X1, y: Y2)",
		},
		{
			name:       "oneColumnSuffices",
			value:      "Pair",
			cases:      []string{"Pair(x: X1)", "Pair(x: X2)"},
			exhaustive: true,
		},
		{
			name:  "shapePatternsCoverNominalRecords",
			value: "Pair",
			cases: []string{
				"(x: X1, y: Y1)", "(x: X1, y: Y2)",
				"(x: X2, y: Y1)", "(x: X2, y: Y2)",
			},
			exhaustive: true,
		},
		{
			name:       "unconditionalCaseShortCircuits",
			value:      "Pair(x: X1)",
			cases:      []string{"Pair"},
			exhaustive: true,
		},
		{
			name:       "unionFieldRestriction",
			value:      "Pair",
			cases:      []string{"Pair(x: X1|X2)"},
			exhaustive: true,
		},
		{
			name:       "narrowedScrutinee",
			value:      "Pair(x: X1)",
			cases:      []string{"Pair(x: X1, y: Y1)", "Pair(y: Y2)"},
			exhaustive: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			res, err := space.Check(parse(t, u, testCase.value), parseAll(t, u, testCase.cases...))
			require.NoError(t, err)
			assert.Equal(t, testCase.exhaustive, res.Exhaustive)
			if !testCase.exhaustive {
				require.NotNil(t, res.Witness)
				if diff := cmp.Diff(testCase.witness, res.Witness.String()); diff != "" {
					t.Errorf("witness mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

// a field declared on a sealed supertype is matchable through its subtypes
// even when the subtypes never redeclare it
func TestSealedSupertypeFields(t *testing.T) {
	u := universe(t,
		model.TypeDecl{Name: "Shape", Subtypes: []string{"Circle", "Square"}, Fields: map[string]string{"kind": "K"}},
		model.TypeDecl{Name: "Circle"},
		model.TypeDecl{Name: "Square"},
		model.TypeDecl{Name: "K", Subtypes: []string{"K1", "K2"}},
		model.TypeDecl{Name: "K1"},
		model.TypeDecl{Name: "K2"},
	)

	testCases := []struct {
		name       string
		cases      []string
		exhaustive bool
		witness    string
	}{
		{
			name:       "kindsCoverEveryShape",
			cases:      []string{"Shape(kind: K1)", "Shape(kind: K2)"},
			exhaustive: true,
		},
		{
			name:       "oneKindMissesTheOther",
			cases:      []string{"Shape(kind: K1)"},
			exhaustive: false,
			witness:    "Circle(kind: K2)",
		},
		{
			name:       "subtypeCaseMixedWithKindCases",
			cases:      []string{"Circle", "Shape(kind: K1)", "Shape(kind: K2)"},
			exhaustive: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			res, err := space.Check(parse(t, u, "Shape"), parseAll(t, u, testCase.cases...))
			require.NoError(t, err)
			assert.Equal(t, testCase.exhaustive, res.Exhaustive)
			if !testCase.exhaustive {
				require.NotNil(t, res.Witness)
				assert.Equal(t, testCase.witness, res.Witness.String())
			}
		})
	}
}

func TestEmptyScrutinee(t *testing.T) {
	res, err := space.Check(space.Empty(), nil)
	require.NoError(t, err)
	assert.True(t, res.Exhaustive)
	assert.True(t, space.IsExhaustive(space.Empty(), nil))
}

func TestUnionScrutinee(t *testing.T) {
	u := orderingUniverse(t)

	res, err := space.Check(parse(t, u, "Less|Equal"), parseAll(t, u, "Less", "Equal"))
	require.NoError(t, err)
	assert.True(t, res.Exhaustive)

	res, err = space.Check(parse(t, u, "Less|Equal"), parseAll(t, u, "Less"))
	require.NoError(t, err)
	assert.False(t, res.Exhaustive)
	require.NotNil(t, res.Witness)
	assert.Equal(t, "Equal", res.Witness.String())
}

// an open type can only be covered by itself, a supertype, or the top space:
// its subtypes are not enumerable
func TestOpenTypeCoverage(t *testing.T) {
	u := universe(t,
		model.TypeDecl{Name: "Animal"},
		model.TypeDecl{Name: "Dog"},
	)

	res, err := space.Check(parse(t, u, "Animal"), parseAll(t, u, "Dog"))
	require.NoError(t, err)
	assert.False(t, res.Exhaustive)
	require.NotNil(t, res.Witness)
	assert.Equal(t, "Animal", res.Witness.String())

	assert.True(t, space.IsExhaustive(parse(t, u, "Animal"), parseAll(t, u, "Animal")))
	assert.True(t, space.IsExhaustive(parse(t, u, "Animal"), parseAll(t, u, "_")))
}

func TestRecursiveRecordType(t *testing.T) {
	u := universe(t,
		model.TypeDecl{Name: "List", Subtypes: []string{"Nil", "Cons"}},
		model.TypeDecl{Name: "Nil"},
		model.TypeDecl{Name: "Cons", Fields: map[string]string{"tail": "List"}},
	)

	testCases := []struct {
		name       string
		cases      []string
		exhaustive bool
		witness    string
	}{
		{name: "bothVariants", cases: []string{"Nil", "Cons"}, exhaustive: true},
		{
			name:       "oneLevelDeep",
			cases:      []string{"Nil", "Cons(tail: Nil)", "Cons(tail: Cons)"},
			exhaustive: true,
		},
		{
			name:       "missingNilTail",
			cases:      []string{"Nil", "Cons(tail: Cons)"},
			exhaustive: false,
			witness:    "Cons(tail: Nil)",
		},
		{name: "missingNil", cases: []string{"Cons"}, exhaustive: false, witness: "Nil"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			res, err := space.Check(parse(t, u, "List"), parseAll(t, u, testCase.cases...))
			require.NoError(t, err)
			assert.Equal(t, testCase.exhaustive, res.Exhaustive)
			if !testCase.exhaustive {
				require.NotNil(t, res.Witness)
				assert.Equal(t, testCase.witness, res.Witness.String())
			}
		})
	}
}

// a cyclic sealed declaration must not expand forever
func TestCyclicSealedTypesTerminate(t *testing.T) {
	u := universe(t,
		model.TypeDecl{Name: "A", Subtypes: []string{"B"}},
		model.TypeDecl{Name: "B", Subtypes: []string{"A"}},
	)

	res, err := space.Check(parse(t, u, "A"), nil)
	require.NoError(t, err)
	assert.False(t, res.Exhaustive)
	require.NotNil(t, res.Witness)

	assert.True(t, space.IsExhaustive(parse(t, u, "A"), parseAll(t, u, "A")))
}

func TestRedundantCases(t *testing.T) {
	u := orderingUniverse(t)

	res, err := space.Check(parse(t, u, "Ordering"), parseAll(t, u, "Less", "Equal", "Greater", "Less"))
	require.NoError(t, err)
	assert.True(t, res.Exhaustive)
	assert.Equal(t, []int{3}, res.Redundant)

	res, err = space.Check(parse(t, u, "Ordering"), parseAll(t, u, "Less", "Equal", "Greater"))
	require.NoError(t, err)
	assert.True(t, res.Exhaustive)
	assert.Empty(t, res.Redundant)
}
