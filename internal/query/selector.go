// Package query evaluates selector expressions over a set of live elements.
//
// A selector is a chain of terms folded left to right, starting from every
// element:
//
//	::            children of each element
//	@Type         keep elements whose type is, or derives from, Type
//	.field        project each element onto the elements held by field
//	[field=value] keep elements whose field renders as value
//	Name          keep elements named Name
//
// For example "@Model::@Class[isAbstract=true].attributes".
package query

import (
	"fmt"
	"strconv"
	"strings"

	"modelrepo/internal/domain"
)

// Source is the element set a selector runs against.
type Source interface {
	All() []domain.Element
	Get(id string) domain.Element
	Registry() *domain.Registry
}

// TermKind identifies a selector operator.
type TermKind int

const (
	TermChildren TermKind = iota
	TermType
	TermField
	TermValue
	TermName
)

// Term is one parsed selector operator.
type Term struct {
	Kind  TermKind
	Name  string
	Value string
}

func (t Term) String() string {
	switch t.Kind {
	case TermChildren:
		return "::"
	case TermType:
		return "@" + t.Name
	case TermField:
		return "." + t.Name
	case TermValue:
		return "[" + t.Name + "=" + t.Value + "]"
	default:
		return t.Name
	}
}

// ParseError reports malformed selector syntax.
type ParseError struct {
	Selector string
	Term     string
	Offset   int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid selector %q at %d (%s): %s", e.Selector, e.Offset, e.Term, e.Reason)
}

// Parse splits a selector into terms.
func Parse(selector string) ([]Term, error) {
	var terms []Term
	s := selector
	i := 0
	fail := func(start int, term, reason string) error {
		return &ParseError{Selector: selector, Term: term, Offset: start, Reason: reason}
	}

	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == ':':
			if i+1 >= len(s) || s[i+1] != ':' {
				return nil, fail(i, ":", "expected '::'")
			}
			terms = append(terms, Term{Kind: TermChildren})
			i += 2
		case c == '@' || c == '.':
			start := i
			i++
			j := scanIdent(s, i)
			if j == i {
				return nil, fail(start, string(c), "missing operand")
			}
			kind := TermType
			if c == '.' {
				kind = TermField
			}
			terms = append(terms, Term{Kind: kind, Name: s[i:j]})
			i = j
		case c == '[':
			start := i
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fail(start, s[start:], "unmatched '['")
			}
			body := s[i+1 : i+end]
			field, value, ok := strings.Cut(body, "=")
			field = strings.TrimSpace(field)
			if !ok || field == "" {
				return nil, fail(start, s[start:i+end+1], "expected [field=value]")
			}
			terms = append(terms, Term{Kind: TermValue, Name: field, Value: unquote(strings.TrimSpace(value))})
			i += end + 1
		case c == ']':
			return nil, fail(i, "]", "unmatched ']'")
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(":@.[]", rune(s[j])) {
				j++
			}
			name := strings.TrimSpace(s[i:j])
			if name != "" {
				terms = append(terms, Term{Kind: TermName, Name: unquote(name)})
			}
			i = j
		}
	}
	return terms, nil
}

func scanIdent(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			i++
			continue
		}
		break
	}
	return i
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// Select parses selector and evaluates it over src.
func Select(src Source, selector string) ([]domain.Element, error) {
	terms, err := Parse(selector)
	if err != nil {
		return nil, err
	}
	return Eval(src, terms), nil
}

// Eval folds every element of src through terms, left to right.
func Eval(src Source, terms []Term) []domain.Element {
	reg := src.Registry()
	set := src.All()
	for _, t := range terms {
		var next []domain.Element
		switch t.Kind {
		case TermChildren:
			for _, e := range set {
				next = append(next, reg.Children(e)...)
			}
		case TermType:
			next = filter(set, func(e domain.Element) bool { return reg.IsKindOf(e.TypeName(), t.Name) })
		case TermField:
			for _, e := range set {
				next = append(next, project(src, e, t.Name)...)
			}
		case TermValue:
			next = filter(set, func(e domain.Element) bool {
				a, ok := reg.Attr(e.TypeName(), t.Name)
				return ok && Render(a, a.Get(e)) == t.Value
			})
		case TermName:
			next = filter(set, func(e domain.Element) bool { return domain.NameOf(e) == t.Name })
		}
		set = dedupe(next)
	}
	return set
}

func project(src Source, e domain.Element, field string) []domain.Element {
	a, ok := src.Registry().Attr(e.TypeName(), field)
	if !ok {
		return nil
	}
	var out []domain.Element
	for _, id := range a.SlotIDs(e) {
		if target := src.Get(id); target != nil {
			out = append(out, target)
		}
	}
	return out
}

// Render formats an attribute value the way value filters compare it: enum
// literals by name, references by id, numbers without trailing zeros.
func Render(a domain.Attr, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		if a.Kind == domain.KindEnum && x >= 0 && x < len(a.Literals) {
			return a.Literals[x]
		}
		return strconv.Itoa(x)
	case domain.Ref:
		return string(x)
	case domain.Element:
		return x.ID()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func filter(set []domain.Element, keep func(domain.Element) bool) []domain.Element {
	var out []domain.Element
	for _, e := range set {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func dedupe(set []domain.Element) []domain.Element {
	seen := make(map[string]bool, len(set))
	out := set[:0:0]
	for _, e := range set {
		if !seen[e.ID()] {
			seen[e.ID()] = true
			out = append(out, e)
		}
	}
	return out
}
