package native

import (
	"errors"
	"fmt"
)

// Candidates is a fallback chain of library names, typically the most specialised build first.
//
// Next is a LibraryNameProvider and Retry the matching LibraryLoadFailureHandler: every failed
// candidate moves the chain forward, the loop stops once the chain is exhausted.
// A Candidates value belongs to a single Library.
type Candidates struct {
	names  []string
	policy LoadPolicy
	next   int
	err    error
}

// NewCandidates creates a chain trying names in order with policy.
func NewCandidates(policy LoadPolicy, names ...string) *Candidates {
	return &Candidates{names: names, policy: policy}
}

// Next yields the current candidate, empty once exhausted.
func (c *Candidates) Next() (string, LoadPolicy) {
	if c.next >= len(c.names) {
		return "", c.policy
	}
	return c.names[c.next], c.policy
}

// Retry records the failure of name and reports whether another candidate is left.
func (c *Candidates) Retry(name string, _ LoadPolicy, err error) bool {
	if name == "" {
		if c.err == nil {
			c.err = ErrNoCandidate
		}
		return false
	}
	if err != nil {
		c.err = errors.Join(c.err, err)
	}
	c.next++
	return c.next < len(c.names)
}

// Err is the joined failure of every candidate tried.
func (c *Candidates) Err() error { return c.err }

// Tried is the number of candidates that failed.
func (c *Candidates) Tried() int { return c.next }

// Raise wraps a load failure handler: when it gives up on a captured error, the error is raised as a panic
// so that the first user of the library observes it.
func Raise(h LibraryLoadFailureHandler) LibraryLoadFailureHandler {
	return func(name string, policy LoadPolicy, err error) bool {
		if h != nil && h(name, policy, err) {
			return true
		}
		if err != nil {
			panic(err)
		}
		return false
	}
}

// ContinueOnMissing keeps resolving after a missing symbol, leaving its slot unresolved.
func ContinueOnMissing(string, error) bool { return true }

// AbortOnMissing abandons the rest of the group at the first missing symbol.
func AbortOnMissing(string, error) bool { return false }

// RaiseOnMissing panics with the lookup failure, abandoning the rest of the group.
func RaiseOnMissing(symbol string, err error) bool {
	if err == nil {
		err = fmt.Errorf("%w: %q", ErrBlankSymbol, symbol)
	}
	panic(err)
}
