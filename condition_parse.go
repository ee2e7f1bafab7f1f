package native

import (
	"fmt"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"
)

// ParseCondition reads a condition written in CUE expression syntax.
//
//	&&  AndAlso        ||  OrElse
//	&   And (eager)    |   Or (eager)
//	!   Not            ()  grouping
//
// Identifiers and quoted strings are atoms, so names such as "env:DISPLAY" must be quoted.
// Precedence follows CUE: && binds tighter than ||, which binds tighter than &, then |.
func ParseCondition(src string) (*Condition, error) {
	expr, err := parser.ParseExpr("condition", src)
	if err != nil {
		return nil, fmt.Errorf("parse condition %q: %w", src, err)
	}
	c, err := fromExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parse condition %q: %w", src, err)
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("parse condition %q: %w", src, err)
	}
	return c, nil
}

// MustParseCondition is ParseCondition that panics on error.
func MustParseCondition(src string) *Condition {
	c, err := ParseCondition(src)
	if err != nil {
		panic(err)
	}
	return c
}

func fromExpr(e ast.Expr) (*Condition, error) {
	switch x := e.(type) {
	case *ast.Ident:
		return Atom(x.Name), nil
	case *ast.BasicLit:
		if x.Kind != token.STRING {
			return nil, fmt.Errorf("%w: literal %s is not an atom", ErrMalformedCondition, x.Value)
		}
		name, err := literal.Unquote(x.Value)
		if err != nil {
			return nil, err
		}
		return Atom(name), nil
	case *ast.ParenExpr:
		return fromExpr(x.X)
	case *ast.UnaryExpr:
		if x.Op != token.NOT {
			return nil, fmt.Errorf("%w: unsupported operator %s", ErrMalformedCondition, x.Op)
		}
		v, err := fromExpr(x.X)
		if err != nil {
			return nil, err
		}
		return Not(v), nil
	case *ast.BinaryExpr:
		var op Op
		switch x.Op {
		case token.AND:
			op = OpAnd
		case token.OR:
			op = OpOr
		case token.LAND:
			op = OpAndAlso
		case token.LOR:
			op = OpOrElse
		default:
			return nil, fmt.Errorf("%w: unsupported operator %s", ErrMalformedCondition, x.Op)
		}
		l, err := fromExpr(x.X)
		if err != nil {
			return nil, err
		}
		r, err := fromExpr(x.Y)
		if err != nil {
			return nil, err
		}
		return binary(op, l, r), nil
	default:
		return nil, fmt.Errorf("%w: unsupported expression %T", ErrMalformedCondition, e)
	}
}
