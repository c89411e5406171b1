// Package exerr is the catalogue of contract violations the engine can
// signal. These always indicate a bug in the caller (a malformed type model
// or space), never a property of the matched program: an ordinary missing
// case is reported as a non-exhaustive result, not an error.
package exerr

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	UndefinedType
	UnknownField
	DuplicateName
	NotRecord
	Notation
	ModelRead
)

type CheckError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) CheckError
	getStack() []byte
}

func FormatWithCode(e CheckError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E CheckError](err E) CheckError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewUndefinedType struct {
	Name  string
	stack []byte
}

func (e NewUndefinedType) Error() string {
	return fmt.Sprintf("type '%s' is not defined in the model", e.Name)
}
func (e NewUndefinedType) Code() ErrCode    { return UndefinedType }
func (e NewUndefinedType) getStack() []byte { return e.stack }
func (e NewUndefinedType) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewUnknownField struct {
	TypeName string
	Field    string
	stack    []byte
}

func (e NewUnknownField) Error() string {
	return fmt.Sprintf("space restricts field '%s', which does not exist on type '%s'", e.Field, e.TypeName)
}
func (e NewUnknownField) Code() ErrCode    { return UnknownField }
func (e NewUnknownField) getStack() []byte { return e.stack }
func (e NewUnknownField) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewDuplicateName struct {
	Kind  string // "type", "subtype" or "field"
	Name  string
	In    string
	stack []byte
}

func (e NewDuplicateName) Error() string {
	if e.In == "" {
		return fmt.Sprintf("duplicate %s declaration '%s'", e.Kind, e.Name)
	}
	return fmt.Sprintf("duplicate %s '%s' in declaration of '%s'", e.Kind, e.Name, e.In)
}
func (e NewDuplicateName) Code() ErrCode    { return DuplicateName }
func (e NewDuplicateName) getStack() []byte { return e.stack }
func (e NewDuplicateName) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewNotRecord struct {
	TypeName string
	stack    []byte
}

func (e NewNotRecord) Error() string {
	return fmt.Sprintf("type '%s' has no fields, so it cannot carry field restrictions", e.TypeName)
}
func (e NewNotRecord) Code() ErrCode    { return NotRecord }
func (e NewNotRecord) getStack() []byte { return e.stack }
func (e NewNotRecord) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewNotation struct {
	Src     string
	Offset  int
	Message string
	stack   []byte
}

func (e NewNotation) Error() string {
	return fmt.Sprintf("bad space notation at offset %d of %q: %s", e.Offset, e.Src, e.Message)
}
func (e NewNotation) Code() ErrCode    { return Notation }
func (e NewNotation) getStack() []byte { return e.stack }
func (e NewNotation) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}

type NewModelRead struct {
	Path    string
	Message string
	stack   []byte
}

func (e NewModelRead) Error() string {
	return fmt.Sprintf("could not read model at %s: %s", e.Path, e.Message)
}
func (e NewModelRead) Code() ErrCode    { return ModelRead }
func (e NewModelRead) getStack() []byte { return e.stack }
func (e NewModelRead) withStack(stack []byte) CheckError {
	e.stack = stack
	return e
}
