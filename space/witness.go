package space

import (
	"slices"
	"strings"

	"github.com/cottand/exhaust/util"
)

// Witness is one concrete uncovered shape, suitable for rendering in a
// diagnostic as an example value the cases fail to match. Fields holds the
// decomposition of the fields that matter; an absent field may hold
// anything.
type Witness struct {
	Type   StaticType
	Fields map[string]*Witness
}

// String renders the witness in the same compact notation Parse accepts.
func (w *Witness) String() string {
	if len(w.Fields) == 0 {
		return w.Type.Name()
	}
	names := make([]string, 0, len(w.Fields))
	for name := range w.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	fieldStrs := make([]string, 0, len(names))
	for s := range util.MapIter(slices.Values(names), func(name string) string {
		return name + ": " + w.Fields[name].String()
	}) {
		fieldStrs = append(fieldStrs, s)
	}
	rendered := "(" + strings.Join(fieldStrs, ", ") + ")"
	if isShape(w.Type) {
		return rendered
	}
	return w.Type.Name() + rendered
}

// witnessOf picks a representative uncovered value out of s. For a union it
// takes the first member, so case and subtype declaration order decide which
// witness a non-exhaustive check reports.
func witnessOf(s Space) *Witness {
	switch s := s.(type) {
	case emptySpace:
		return nil
	case unionSpace:
		return witnessOf(s.members[0])
	case typeSpace:
		w := &Witness{Type: s.typ}
		for _, field := range s.sortedFields() {
			fw := witnessOf(field.Snd)
			if fw == nil {
				continue
			}
			if w.Fields == nil {
				w.Fields = make(map[string]*Witness)
			}
			w.Fields[field.Fst] = fw
		}
		return w
	}
	return nil
}
