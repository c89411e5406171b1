package model

import (
	"io"
	"os"

	"github.com/cottand/exhaust/exerr"
	"github.com/cottand/exhaust/space"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is a loaded model file: a resolved universe plus the
// exhaustiveness queries to run against it.
type Document struct {
	Universe *Universe
	Queries  []Query
}

// Query is one scrutinee and its case list, kept alongside the notation they
// were written in for reporting.
type Query struct {
	ValueSrc string
	CaseSrcs []string
	Value    space.Space
	Cases    []space.Space
}

type yamlDocument struct {
	Types   []yamlType  `yaml:"types"`
	Queries []yamlQuery `yaml:"queries"`
}

type yamlType struct {
	Name string `yaml:"name"`
	// Sealed lists the direct subtypes, in declaration order
	Sealed []string          `yaml:"sealed"`
	Fields map[string]string `yaml:"fields"`
}

type yamlQuery struct {
	Value string   `yaml:"value"`
	Cases []string `yaml:"cases"`
}

// Load reads a YAML model document:
//
//	types:
//	  - name: Ordering
//	    sealed: [Less, Equal, Greater]
//	  - name: Less
//	  - name: Equal
//	  - name: Greater
//	queries:
//	  - value: Ordering
//	    cases: [Less, Equal, Greater]
//
// Spaces in queries use the notation of space.Parse.
func Load(r io.Reader) (*Document, error) {
	var raw yamlDocument
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "could not decode model document")
	}

	universe := NewUniverse()
	for _, t := range raw.Types {
		err := universe.Declare(TypeDecl{Name: t.Name, Subtypes: t.Sealed, Fields: t.Fields})
		if err != nil {
			return nil, errors.Wrapf(err, "declaring type '%s'", t.Name)
		}
	}
	if err := universe.Resolve(); err != nil {
		return nil, err
	}

	doc := &Document{Universe: universe}
	for i, q := range raw.Queries {
		query := Query{ValueSrc: q.Value, CaseSrcs: q.Cases}
		var err error
		query.Value, err = space.Parse(q.Value, universe.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "value of query %d", i)
		}
		for _, caseSrc := range q.Cases {
			caseSpace, err := space.Parse(caseSrc, universe.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "case %q of query %d", caseSrc, i)
			}
			query.Cases = append(query.Cases, caseSpace)
		}
		doc.Queries = append(doc.Queries, query)
	}
	return doc, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exerr.New(exerr.NewModelRead{Path: path, Message: err.Error()})
	}
	defer func() {
		_ = f.Close()
	}()
	doc, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return doc, nil
}
