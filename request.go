package native

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tells what a symbol import points at. It is carried through, never interpreted while resolving.
type Kind uint8

const (
	Function      Kind = iota //address of a callable entry point
	DataReference             //address of exported data
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case DataReference:
		return "data"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String, an empty text is a Function.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "function", "func":
		return Function, nil
	case "data", "reference", "ref":
		return DataReference, nil
	}
	return 0, fmt.Errorf("unknown symbol kind %q", s)
}

// ImportRequest is one call site asking for Symbol from Library, optionally only when Condition holds.
type ImportRequest struct {
	Symbol    string
	Library   *Library   //owning library, compared by identity
	Condition *Condition //nil for unconditional imports
	Kind      Kind
	Meta      any //call-site metadata such as a signature, opaque here
}

func (r ImportRequest) String() string {
	lib := "<nil>"
	if r.Library != nil {
		lib = r.Library.String()
	}
	if r.Condition == nil {
		return fmt.Sprintf("%s!%s", lib, r.Symbol)
	}
	return fmt.Sprintf("%s!%s when %s", lib, r.Symbol, r.Condition)
}

var (
	// ErrBlankSymbol occurs when a request or lookup names no symbol.
	ErrBlankSymbol = errors.New("blank symbol name")
	// ErrMissingLibrary occurs when a request has no owning library.
	ErrMissingLibrary = errors.New("missing library")
	// ErrMissingSymbol occurs when a loader can't find a symbol.
	ErrMissingSymbol = errors.New("missing symbol")
	// ErrNoCandidate occurs when a library has no more candidate names to try.
	ErrNoCandidate = errors.New("no library candidate")
)

// Validate reports why a request can't be consolidated.
func (r ImportRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrBlankSymbol
	}
	if r.Library == nil {
		return ErrMissingLibrary
	}
	if r.Condition != nil {
		if err := r.Condition.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type (
	// ValidationError is a rejected request. It never stops consolidation of the others.
	ValidationError struct {
		Index   int //position in the consolidated sequence
		Request ImportRequest
		Err     error
	}
	// LibraryLoadError wraps a loader failure for one candidate.
	LibraryLoadError struct {
		Library string
		Name    string
		Policy  LoadPolicy
		Err     error
	}
	// SymbolLoadError wraps a symbol lookup failure.
	SymbolLoadError struct {
		Library string
		Symbol  string
		Err     error
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import #%d (%s): %v", e.Index, e.Request, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *LibraryLoadError) Error() string {
	return fmt.Sprintf("load library %s as %q: %v", e.Library, e.Name, e.Err)
}

func (e *LibraryLoadError) Unwrap() error { return e.Err }

func (e *SymbolLoadError) Error() string {
	return fmt.Sprintf("load symbol %q from %s: %v", e.Symbol, e.Library, e.Err)
}

func (e *SymbolLoadError) Unwrap() error { return e.Err }
