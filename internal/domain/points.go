package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a diagram coordinate.
type Point struct {
	X, Y float64
}

// Points is an edge route, persisted as "x1:y1;x2:y2".
type Points []Point

// String formats the route in its persisted form.
func (p Points) String() string {
	parts := make([]string, len(p))
	for i, pt := range p {
		parts[i] = strconv.FormatFloat(pt.X, 'f', -1, 64) + ":" + strconv.FormatFloat(pt.Y, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

// ParsePoints reads a route written by Points.String.
func ParsePoints(s string) (Points, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out Points
	for _, part := range strings.Split(s, ";") {
		xs, ys, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("malformed point %q", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", part, err)
		}
		out = append(out, Point{X: x, Y: y})
	}
	return out, nil
}

func encodePoints(p Points) (any, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return p.String(), nil
}

func decodePoints(raw any) (Points, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return ParsePoints(v)
	case Points:
		return v, nil
	}
	return nil, fmt.Errorf("%w: points cannot be read from %T", ErrKindMismatch, raw)
}
