package native

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/literal"
)

// Op is the tag of a Condition node.
type Op uint8

const (
	OpAtom    Op = iota //named predicate
	OpNot               //negation
	OpAnd               //eager conjunction, both sides always evaluated
	OpOr                //eager disjunction, both sides always evaluated
	OpAndAlso           //short-circuit conjunction
	OpOrElse            //short-circuit disjunction
)

var opNames = [...]string{"atom", "not", "and", "or", "andalso", "orelse"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

type (
	// Condition is an immutable boolean expression over named predicates.
	//
	// A nil *Condition on an ImportRequest means the import is unconditional.
	Condition struct {
		op    Op
		name  string
		left  *Condition
		right *Condition
		key   string
	}
	// AtomEvaluator answers a named predicate.
	AtomEvaluator func(name string) bool
)

var (
	// ErrMalformedCondition occurs when a Condition tree has a missing child or a blank atom.
	ErrMalformedCondition = errors.New("malformed condition")
)

// Atom creates a named predicate.
func Atom(name string) *Condition {
	c := &Condition{op: OpAtom, name: name}
	c.key = c.render()
	return c
}

// Not negates e.
func Not(e *Condition) *Condition { return unary(OpNot, e) }

// And evaluates both operands and combines them.
func And(l, r *Condition) *Condition { return binary(OpAnd, l, r) }

// Or evaluates both operands and combines them.
func Or(l, r *Condition) *Condition { return binary(OpOr, l, r) }

// AndAlso evaluates r only when l holds.
func AndAlso(l, r *Condition) *Condition { return binary(OpAndAlso, l, r) }

// OrElse evaluates r only when l does not hold.
func OrElse(l, r *Condition) *Condition { return binary(OpOrElse, l, r) }

func unary(op Op, e *Condition) *Condition {
	c := &Condition{op: op, left: e}
	c.key = c.render()
	return c
}

func binary(op Op, l, r *Condition) *Condition {
	c := &Condition{op: op, left: l, right: r}
	c.key = c.render()
	return c
}

// Op returns the node tag.
func (c *Condition) Op() Op { return c.op }

// Name returns the atom name, empty for composite nodes.
func (c *Condition) Name() string { return c.name }

// Operands returns the children of the node; right is nil for Not, both are nil for atoms.
func (c *Condition) Operands() (left, right *Condition) { return c.left, c.right }

// Validate reports a malformed tree.
func (c *Condition) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: missing operand", ErrMalformedCondition)
	}
	switch c.op {
	case OpAtom:
		if strings.TrimSpace(c.name) == "" {
			return fmt.Errorf("%w: blank atom", ErrMalformedCondition)
		}
		return nil
	case OpNot:
		return c.left.Validate()
	case OpAnd, OpOr, OpAndAlso, OpOrElse:
		if err := c.left.Validate(); err != nil {
			return err
		}
		return c.right.Validate()
	default:
		return fmt.Errorf("%w: unknown %s", ErrMalformedCondition, c.op)
	}
}

// Evaluate computes the condition against atoms. The tree must be valid.
func (c *Condition) Evaluate(atoms AtomEvaluator) bool {
	switch c.op {
	case OpAtom:
		return atoms(c.name)
	case OpNot:
		return !c.left.Evaluate(atoms)
	case OpAnd:
		l, r := c.left.Evaluate(atoms), c.right.Evaluate(atoms)
		return l && r
	case OpOr:
		l, r := c.left.Evaluate(atoms), c.right.Evaluate(atoms)
		return l || r
	case OpAndAlso:
		return c.left.Evaluate(atoms) && c.right.Evaluate(atoms)
	case OpOrElse:
		return c.left.Evaluate(atoms) || c.right.Evaluate(atoms)
	}
	panic(fmt.Errorf("%w: unknown %s", ErrMalformedCondition, c.op))
}

// Equal reports structural identity: same shape and same atom names.
func Equal(a, b *Condition) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.op != b.op || a.name != b.name {
		return false
	}
	return Equal(a.left, b.left) && Equal(a.right, b.right)
}

// Key is the canonical text of the tree. Two conditions are Equal exactly when their keys are equal.
func (c *Condition) Key() string {
	if c == nil {
		return ""
	}
	return c.key
}

// String renders the condition in the syntax accepted by ParseCondition.
func (c *Condition) String() string {
	if c == nil {
		return "<unconditional>"
	}
	return c.key
}

func (c *Condition) render() string {
	var b strings.Builder
	c.write(&b)
	return b.String()
}

func (c *Condition) write(b *strings.Builder) {
	if c == nil {
		b.WriteString("<nil>")
		return
	}
	switch c.op {
	case OpAtom:
		b.WriteString(atomLiteral(c.name))
	case OpNot:
		b.WriteByte('!')
		c.left.write(b)
	default:
		b.WriteByte('(')
		c.left.write(b)
		b.WriteString(opSymbols[c.op])
		c.right.write(b)
		b.WriteByte(')')
	}
}

var opSymbols = map[Op]string{
	OpAnd:     " & ",
	OpOr:      " | ",
	OpAndAlso: " && ",
	OpOrElse:  " || ",
}

// atomLiteral quotes names that are not plain identifiers as CUE strings, so keys stay injective and parse back.
func atomLiteral(name string) string {
	if isIdent(name) {
		return name
	}
	return literal.String.Quote(name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	switch s {
	case "_", "true", "false", "null", "for", "in", "if", "let", "div", "mod", "quo", "rem":
		return false
	}
	return true
}
