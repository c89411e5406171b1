package space

import (
	"unicode"

	"github.com/cottand/exhaust/exerr"
)

// Parse reads the compact space notation used by the test-suite and by
// model query files:
//
//	∅                  the empty space
//	_                  any value at all
//	Name               any instance of Name
//	Name(f: S, g: S)   instances of Name with field restrictions
//	(f: S, g: S)       a record pattern fixing no nominal type
//	S|S                a union
//
// lookup resolves type names against the caller's model.
func Parse(src string, lookup func(name string) (StaticType, bool)) (Space, error) {
	p := &notationParser{runes: []rune(src), src: src, lookup: lookup}
	s, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("trailing input after space")
	}
	return s, nil
}

type notationParser struct {
	src    string
	runes  []rune
	pos    int
	lookup func(string) (StaticType, bool)
}

func (p *notationParser) errorf(message string) error {
	return exerr.New(exerr.NewNotation{Src: p.src, Offset: p.pos, Message: message})
}

func (p *notationParser) done() bool {
	return p.pos >= len(p.runes)
}

func (p *notationParser) peek() rune {
	return p.runes[p.pos]
}

func (p *notationParser) skipSpace() {
	for !p.done() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *notationParser) parseUnion() (Space, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	parts := []Space{first}
	for {
		p.skipSpace()
		if p.done() || p.peek() != '|' {
			break
		}
		p.pos++
		part, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return Union(parts...), nil
}

func (p *notationParser) parseTerm() (Space, error) {
	p.skipSpace()
	if p.done() {
		return nil, p.errorf("expected a space")
	}
	switch r := p.peek(); {
	case r == '∅':
		p.pos++
		return Empty(), nil
	case r == '_':
		p.pos++
		return FromType(Top), nil
	case r == '(':
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return Record(fields), nil
	case unicode.IsLetter(r):
		name := p.parseIdent()
		typ, ok := p.lookup(name)
		if !ok {
			return nil, exerr.New(exerr.NewUndefinedType{Name: name})
		}
		p.skipSpace()
		if p.done() || p.peek() != '(' {
			return FromType(typ), nil
		}
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return RecordOf(typ, fields)
	default:
		return nil, p.errorf("expected '∅', '_', '(' or a type name")
	}
}

func (p *notationParser) parseFields() (map[string]Space, error) {
	p.pos++ // consume '('
	fields := make(map[string]Space)
	p.skipSpace()
	if !p.done() && p.peek() == ')' {
		p.pos++
		return fields, nil
	}
	for {
		p.skipSpace()
		if p.done() || !unicode.IsLetter(p.peek()) {
			return nil, p.errorf("expected a field name")
		}
		name := p.parseIdent()
		if _, ok := fields[name]; ok {
			return nil, exerr.New(exerr.NewDuplicateName{Kind: "field", Name: name, In: p.src})
		}
		p.skipSpace()
		if p.done() || p.peek() != ':' {
			return nil, p.errorf("expected ':' after field name")
		}
		p.pos++
		restriction, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		fields[name] = restriction
		p.skipSpace()
		if p.done() {
			return nil, p.errorf("unterminated field list")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return fields, nil
		default:
			return nil, p.errorf("expected ',' or ')' in field list")
		}
	}
}

func (p *notationParser) parseIdent() string {
	start := p.pos
	for !p.done() {
		r := p.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		p.pos++
	}
	return string(p.runes[start:p.pos])
}
