package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// ParseCode evaluates a literal expression written in Go syntax: numbers,
// strings, runes, booleans, nil, negation and composite literals such as
// []int{1, 2}. Composite literals yield []any.
func ParseCode(code string) (any, error) {
	src := []byte("package p\nvar _ = " + code + "\n")

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code %q: %w", code, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: code %q is not an expression", ErrInvalidSheet, code)
	}

	spec := find(root, "var_spec")
	if spec == nil {
		return nil, fmt.Errorf("%w: code %q is not an expression", ErrInvalidSheet, code)
	}
	value := spec.ChildByFieldName("value")
	if value == nil {
		return nil, fmt.Errorf("%w: code %q has no value", ErrInvalidSheet, code)
	}
	if value.Type() == "expression_list" {
		if value.NamedChildCount() != 1 {
			return nil, fmt.Errorf("%w: code %q must be a single expression", ErrInvalidSheet, code)
		}
		value = value.NamedChild(0)
	}
	return eval(value, src)
}

func find(n *sitter.Node, typ string) *sitter.Node {
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := find(n.NamedChild(i), typ); found != nil {
			return found
		}
	}
	return nil
}

func eval(n *sitter.Node, src []byte) (any, error) {
	text := n.Content(src)
	switch n.Type() {
	case "int_literal":
		v, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		return v, nil
	case "float_literal":
		v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		return v, nil
	case "interpreted_string_literal", "raw_string_literal":
		v, err := strconv.Unquote(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		return v, nil
	case "rune_literal":
		v, err := strconv.Unquote(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		return []rune(v)[0], nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil":
		return nil, nil
	case "parenthesized_expression":
		return eval(n.NamedChild(0), src)
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		operand := n.ChildByFieldName("operand")
		if op == nil || operand == nil || op.Content(src) != "-" {
			return nil, fmt.Errorf("%w: unsupported expression %q", ErrInvalidSheet, text)
		}
		v, err := eval(operand, src)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
		return nil, fmt.Errorf("%w: cannot negate %q", ErrInvalidSheet, text)
	case "composite_literal":
		body := n.ChildByFieldName("body")
		if body == nil {
			return nil, fmt.Errorf("%w: composite literal %q has no body", ErrInvalidSheet, text)
		}
		return eval(body, src)
	case "literal_value":
		out := make([]any, 0, n.NamedChildCount())
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			if child.Type() == "keyed_element" {
				return nil, fmt.Errorf("%w: keyed elements are not supported in %q", ErrInvalidSheet, text)
			}
			v, err := eval(child, src)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case "literal_element", "element":
		if n.NamedChildCount() != 1 {
			return nil, fmt.Errorf("%w: unsupported element %q", ErrInvalidSheet, text)
		}
		return eval(n.NamedChild(0), src)
	}
	return nil, fmt.Errorf("%w: unsupported expression %q (%s)", ErrInvalidSheet, text, n.Type())
}
