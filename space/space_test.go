package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubType struct {
	name   string
	sealed bool
	subs   []StaticType
	fields map[string]StaticType
}

func (s stubType) Name() string                        { return s.name }
func (s stubType) IsSealed() bool                      { return s.sealed }
func (s stubType) IsRecord() bool                      { return len(s.fields) > 0 }
func (s stubType) DirectSubtypes() []StaticType        { return s.subs }
func (s stubType) RecordFields() map[string]StaticType { return s.fields }
func (s stubType) IsSubtypeOf(other StaticType) bool {
	return IsTop(other) || s.name == other.Name()
}

var (
	aType = stubType{name: "A"}
	bType = stubType{name: "B"}
	cType = stubType{name: "C"}
)

func TestUnionFlattening(t *testing.T) {
	a, b, c := FromType(aType), FromType(bType), FromType(cType)

	testCases := []struct {
		name     string
		built    Space
		expected Space
	}{
		{name: "nestedLeft", built: Union(Union(a, b), c), expected: Union(a, b, c)},
		{name: "nestedRight", built: Union(a, Union(b, c)), expected: Union(a, b, c)},
		{name: "deeplyNested", built: Union(Union(Union(a), b), c), expected: Union(a, b, c)},
		{name: "zeroIsEmpty", built: Union(), expected: Empty()},
		{name: "singleUnwrapped", built: Union(a), expected: a},
		{name: "emptyDropped", built: Union(Empty(), a), expected: a},
		{name: "allEmpty", built: Union(Empty(), Empty()), expected: Empty()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.True(t, Equal(testCase.built, testCase.expected), "%s should equal %s", testCase.built, testCase.expected)
			assert.Equal(t, testCase.expected.String(), testCase.built.String())
		})
	}
}

func TestRecordAbsorbsEmptyField(t *testing.T) {
	s := Record(map[string]Space{"f": Empty()})
	assert.True(t, Equal(s, Empty()), "a field restricted to the empty space makes the whole space empty, got %s", s)
}

func TestRecordOfValidatesFields(t *testing.T) {
	pair := stubType{name: "Pair", fields: map[string]StaticType{"x": aType, "y": bType}}

	_, err := RecordOf(pair, map[string]Space{"z": FromType(aType)})
	assert.Error(t, err, "restricting a field the type does not have is a contract violation")

	_, err = RecordOf(aType, map[string]Space{"x": FromType(bType)})
	assert.Error(t, err, "a type without fields cannot carry restrictions")

	s, err := RecordOf(pair, map[string]Space{"x": FromType(aType)})
	assert.NoError(t, err)
	assert.Equal(t, "Pair(x: A)", s.String())
}

func TestRecordFieldsComparedByName(t *testing.T) {
	first := Record(map[string]Space{"x": FromType(aType), "y": FromType(bType)})
	second := Record(map[string]Space{"y": FromType(bType), "x": FromType(aType)})
	assert.True(t, Equal(first, second))
	assert.Equal(t, first.String(), second.String())
}

func TestSyntheticShapeSubtyping(t *testing.T) {
	pair := stubType{name: "Pair", fields: map[string]StaticType{"x": aType, "y": bType}}
	xy := SyntheticRecord([]string{"x", "y"})
	x := SyntheticRecord([]string{"x"})

	assert.True(t, subtypeOf(pair, xy), "a record is an instance of the shape observing its fields")
	assert.True(t, subtypeOf(pair, x), "observing fewer fields widens the shape")
	assert.True(t, subtypeOf(xy, x))
	assert.False(t, subtypeOf(x, xy))
	assert.False(t, subtypeOf(aType, x), "a fieldless type matches no record shape")
	assert.True(t, subtypeOf(x, Top))
	assert.True(t, subtypeOf(pair, Top))
	assert.False(t, subtypeOf(Top, pair))
}

func TestEmptySpaceRendering(t *testing.T) {
	assert.Equal(t, "∅", Empty().String())
	assert.Equal(t, "_", FromType(Top).String())
	assert.Equal(t, "A|B", Union(FromType(aType), FromType(bType)).String())
}
