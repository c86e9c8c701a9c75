package codec

import (
	"errors"
	"fmt"

	"modelrepo/internal/domain"
)

// ErrDangling is returned when a value points at an element that is not live.
var ErrDangling = errors.New("dangling reference")

// EncodeValue converts an attribute value to its JSON-compatible form. Owned
// values are encoded by identity only; their content travels in INSERT and
// REMOVE records.
func EncodeValue(a domain.Attr, v any) (any, error) {
	switch a.Kind {
	case domain.KindPrimitive, domain.KindEnum:
		if err := a.Check(v); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindRef:
		switch r := v.(type) {
		case nil:
			return nil, nil
		case domain.Ref:
			if r.IsZero() {
				return nil, nil
			}
			return RefToken(string(r)), nil
		case domain.Element:
			return RefToken(r.ID()), nil
		}
	case domain.KindRefs:
		rs, ok := v.([]domain.Ref)
		if !ok && v != nil {
			break
		}
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i] = RefToken(string(r))
		}
		return out, nil
	case domain.KindObj:
		switch c := v.(type) {
		case nil:
			return nil, nil
		case domain.Element:
			return RefToken(c.ID()), nil
		}
	case domain.KindObjs:
		cs, ok := v.([]domain.Element)
		if !ok && v != nil {
			break
		}
		out := make([]any, len(cs))
		for i, c := range cs {
			out[i] = RefToken(c.ID())
		}
		return out, nil
	case domain.KindVariant:
		switch x := v.(type) {
		case nil, string, bool, float64, int:
			return v, nil
		case domain.Ref:
			return RefToken(string(x)), nil
		case domain.Element:
			return RefToken(x.ID()), nil
		}
	case domain.KindCustom:
		return a.Encode(v)
	}
	return nil, fmt.Errorf("%w: %s field %q cannot hold %T", domain.ErrKindMismatch, a.Kind, a.Name, v)
}

// DecodeValue converts a value produced by EncodeValue back to the form the
// attribute accessor takes, resolving tokens through lookup.
func DecodeValue(a domain.Attr, raw any, lookup Lookup) (any, error) {
	switch a.Kind {
	case domain.KindPrimitive, domain.KindEnum:
		return raw, nil
	case domain.KindCustom:
		return a.Decode(raw)
	case domain.KindRef:
		if raw == nil {
			return domain.Ref(""), nil
		}
		id, err := tokenOf(a, raw)
		if err != nil {
			return nil, err
		}
		return domain.Ref(id), nil
	case domain.KindRefs:
		items, _ := raw.([]any)
		out := make([]domain.Ref, 0, len(items))
		for _, item := range items {
			id, err := tokenOf(a, item)
			if err != nil {
				return nil, err
			}
			out = append(out, domain.Ref(id))
		}
		return out, nil
	case domain.KindObj:
		if raw == nil {
			return nil, nil
		}
		return resolveToken(a, raw, lookup)
	case domain.KindObjs:
		items, _ := raw.([]any)
		out := make([]domain.Element, 0, len(items))
		for _, item := range items {
			e, err := resolveToken(a, item, lookup)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case domain.KindVariant:
		if _, ok := raw.(map[string]any); ok {
			id, err := tokenOf(a, raw)
			if err != nil {
				return nil, err
			}
			return domain.Ref(id), nil
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: unsupported kind %s", domain.ErrKindMismatch, a.Kind)
}

func tokenOf(a domain.Attr, raw any) (string, error) {
	id, ok := TokenID(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q expects a reference token, got %T", domain.ErrKindMismatch, a.Name, raw)
	}
	return id, nil
}

func resolveToken(a domain.Attr, raw any, lookup Lookup) (domain.Element, error) {
	id, err := tokenOf(a, raw)
	if err != nil {
		return nil, err
	}
	e := lookup(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %q -> %s", ErrDangling, a.Name, id)
	}
	return e, nil
}
