package codec

import (
	"go.uber.org/zap"

	"modelrepo/internal/domain"
)

// Writer converts elements to plain JSON-compatible trees. Owned children are
// embedded inline; references become {"$ref": id} tokens.
type Writer struct {
	reg   *domain.Registry
	diags diagnostics
	cur   map[string]any
	elem  domain.Element
}

// NewWriter returns a writer driven by the attribute tables in reg.
func NewWriter(reg *domain.Registry, log *zap.SugaredLogger) *Writer {
	return &Writer{reg: reg, diags: diagnostics{log: log}}
}

// Diagnostics returns the structural problems found so far.
func (w *Writer) Diagnostics() []Diagnostic {
	return w.diags.items
}

// Serialize writes e and everything it owns.
func (w *Writer) Serialize(e domain.Element) map[string]any {
	if e == nil {
		return nil
	}
	return w.save(e)
}

func (w *Writer) save(e domain.Element) map[string]any {
	prevCur, prevElem := w.cur, w.elem
	w.cur = map[string]any{KeyType: e.TypeName(), KeyID: e.ID()}
	w.elem = e
	defer func() { w.cur, w.elem = prevCur, prevElem }()

	if p := e.Parent(); p != nil {
		w.cur[KeyParent] = RefToken(p.ID())
	}
	for _, a := range w.reg.Attrs(e.TypeName()) {
		if a.Transient {
			continue
		}
		v := a.Get(e)
		if a.IsDefault(v) {
			continue
		}
		switch a.Kind {
		case domain.KindPrimitive, domain.KindEnum:
			if err := a.Check(v); err != nil {
				w.report(a.Name, "%v", err)
				continue
			}
			w.Write(a.Name, v)
		case domain.KindObj:
			c, _ := v.(domain.Element)
			w.WriteObj(a.Name, c)
		case domain.KindObjs:
			cs, _ := v.([]domain.Element)
			w.WriteObjArray(a.Name, cs)
		case domain.KindRef:
			r, _ := v.(domain.Ref)
			w.WriteRef(a.Name, r)
		case domain.KindRefs:
			rs, _ := v.([]domain.Ref)
			w.WriteRefArray(a.Name, rs)
		case domain.KindVariant:
			w.WriteVariant(a.Name, v)
		case domain.KindCustom:
			w.WriteCustom(a, v)
		}
	}
	return w.cur
}

func (w *Writer) report(field, format string, args ...any) {
	w.diags.report(w.elem.ID(), w.elem.TypeName(), field, format, args...)
}

// Write stores a primitive value.
func (w *Writer) Write(name string, v any) {
	switch v.(type) {
	case string, bool, float64, int:
		w.cur[name] = v
	default:
		w.report(name, "expected primitive, got %T", v)
	}
}

// WriteObj embeds an owned child, or null when absent.
func (w *Writer) WriteObj(name string, e domain.Element) {
	if e == nil {
		w.cur[name] = nil
		return
	}
	w.cur[name] = w.save(e)
}

// WriteObjArray embeds an array of owned children.
func (w *Writer) WriteObjArray(name string, es []domain.Element) {
	out := make([]any, 0, len(es))
	for _, e := range es {
		if e == nil {
			w.report(name, "nil element in owned array")
			continue
		}
		out = append(out, w.save(e))
	}
	w.cur[name] = out
}

// WriteRef stores a reference token, or null for the null reference.
func (w *Writer) WriteRef(name string, r domain.Ref) {
	if r.IsZero() {
		w.cur[name] = nil
		return
	}
	w.cur[name] = RefToken(string(r))
}

// WriteRefArray stores an array of reference tokens.
func (w *Writer) WriteRefArray(name string, rs []domain.Ref) {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		if r.IsZero() {
			w.report(name, "null reference in reference array")
			continue
		}
		out = append(out, RefToken(string(r)))
	}
	w.cur[name] = out
}

// WriteVariant stores either a primitive or a reference token.
func (w *Writer) WriteVariant(name string, v any) {
	switch x := v.(type) {
	case domain.Ref:
		w.WriteRef(name, x)
	case nil:
		w.cur[name] = nil
	default:
		w.Write(name, v)
	}
}

// WriteCustom delegates to the attribute's own encoder.
func (w *Writer) WriteCustom(a domain.Attr, v any) {
	enc, err := a.Encode(v)
	if err != nil {
		w.report(a.Name, "%v", err)
		return
	}
	w.cur[a.Name] = enc
}
