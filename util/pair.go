// Package util holds the small generic helpers the engine shares.
package util

// Pair is a 2-tuple. The space package uses it to carry a field name next to
// its restriction when an unordered map must be walked deterministically.
type Pair[A, B any] struct {
	Fst A
	Snd B
}

func NewPair[A, B any](fst A, snd B) Pair[A, B] {
	return Pair[A, B]{
		Fst: fst,
		Snd: snd,
	}
}
