package repository

import (
	"slices"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
)

type reordering struct {
	owner domain.Element
	field string
}

type relocation struct {
	elem      domain.Element
	field     string
	oldParent domain.Element
	newParent domain.Element
}

// changeSet accumulates the effects of one apply or revert for a single
// round of notifications.
type changeSet struct {
	created   []domain.Element
	deleted   []domain.Element
	updated   []domain.Element
	reordered []reordering
	relocated []relocation
}

func (c *changeSet) create(e domain.Element) { c.created = append(c.created, e) }
func (c *changeSet) remove(e domain.Element) { c.deleted = append(c.deleted, e) }
func (c *changeSet) update(e domain.Element) { c.updated = append(c.updated, e) }

// apply runs both passes of op in original order. Pass 1 constructs inserted
// subtrees and strips the outbound references of removed ones; pass 2 links
// references, drops removed ids and mutates fields.
func (r *Repository) apply(op *oplog.Operation) *changeSet {
	ch := &changeSet{}
	readers := make([]*codec.Reader, len(op.Ops))

	for i := range op.Ops {
		o := &op.Ops[i]
		switch o.Kind {
		case oplog.KindInsert:
			readers[i] = r.construct(o.Elem)
		case oplog.KindRemove:
			r.teardown(o.Elem)
		}
	}

	for i := range op.Ops {
		o := &op.Ops[i]
		switch o.Kind {
		case oplog.KindInsert:
			r.link(readers[i], ch)
		case oplog.KindRemove:
			o.Inbound = r.unregister(o.Elem, ch)
		case oplog.KindFieldAssign:
			r.assign(o.ID, o.Field, o.New, ch)
		case oplog.KindFieldInsert:
			r.insertAt(o.ID, o.Field, o.Value, o.Index, ch)
		case oplog.KindFieldRemove:
			r.removeAt(o.ID, o.Field, o.Value, o.Index, ch)
		case oplog.KindFieldReorder:
			r.reorder(o.ID, o.Field, o.Value, o.Index, ch)
		case oplog.KindFieldRelocate:
			r.relocate(o.ID, o.Field, o.OldParent, o.NewParent, -1, ch)
		default:
			r.log.Warnw("unknown op kind skipped", "operation", op.Name, "kind", string(o.Kind))
		}
	}
	return ch
}

// revert mirrors apply, walking ops in reverse and swapping old for new.
func (r *Repository) revert(op *oplog.Operation) *changeSet {
	ch := &changeSet{}
	readers := make([]*codec.Reader, len(op.Ops))

	for i := len(op.Ops) - 1; i >= 0; i-- {
		o := &op.Ops[i]
		switch o.Kind {
		case oplog.KindInsert:
			r.teardown(o.Elem)
		case oplog.KindRemove:
			readers[i] = r.construct(o.Elem)
		}
	}

	for i := len(op.Ops) - 1; i >= 0; i-- {
		o := &op.Ops[i]
		switch o.Kind {
		case oplog.KindInsert:
			r.unregister(o.Elem, ch)
		case oplog.KindRemove:
			r.link(readers[i], ch)
			r.restoreInbound(o.Inbound)
		case oplog.KindFieldAssign:
			r.assign(o.ID, o.Field, o.Old, ch)
		case oplog.KindFieldInsert:
			r.removeAt(o.ID, o.Field, o.Value, o.Index, ch)
		case oplog.KindFieldRemove:
			r.insertAt(o.ID, o.Field, o.Value, o.Index, ch)
		case oplog.KindFieldReorder:
			r.reorder(o.ID, o.Field, o.Value, o.OldIndex, ch)
		case oplog.KindFieldRelocate:
			r.relocate(o.ID, o.Field, o.NewParent, o.OldParent, o.Index, ch)
		}
	}
	return ch
}

// publish broadcasts the change set once, deduplicated. Bypass operations
// change state silently.
func (r *Repository) publish(op *oplog.Operation, ch *changeSet) {
	if op.Bypass {
		return
	}
	created := distinct(ch.created, func(e domain.Element) bool { return r.index[e.ID()] == e })
	gone := distinct(ch.deleted, func(e domain.Element) bool { return !r.Contains(e.ID()) })
	updated := distinct(ch.updated, func(e domain.Element) bool { return r.index[e.ID()] == e })

	if len(created) > 0 {
		r.emit(Event{Kind: EventCreated, Elements: created, Operation: op})
	}
	if len(gone) > 0 {
		r.emit(Event{Kind: EventDeleted, Elements: gone, Operation: op})
	}
	if len(updated) > 0 {
		r.emit(Event{Kind: EventUpdated, Elements: updated, Operation: op})
	}
	for _, ro := range ch.reordered {
		r.emit(Event{Kind: EventReordered, Element: ro.owner, Field: ro.field, Operation: op})
	}
	for _, rl := range ch.relocated {
		r.emit(Event{
			Kind:      EventRelocated,
			Element:   rl.elem,
			Field:     rl.field,
			OldParent: rl.oldParent,
			NewParent: rl.newParent,
			Operation: op,
		})
	}
	r.modified = true
	r.emit(Event{Kind: EventModified, Operation: op})
}

func distinct(elems []domain.Element, keep func(domain.Element) bool) []domain.Element {
	seen := make(map[string]bool, len(elems))
	var out []domain.Element
	for _, e := range elems {
		if seen[e.ID()] || (keep != nil && !keep(e)) {
			continue
		}
		seen[e.ID()] = true
		out = append(out, e)
	}
	return out
}

// construct deserializes an inserted subtree and registers every id in it.
func (r *Repository) construct(tree map[string]any) *codec.Reader {
	rd := codec.NewReader(r.reg, r.log)
	if rd.ReadElement(tree) == nil {
		r.log.Warnw("insert record could not be read", "id", tree[codec.KeyID])
		return rd
	}
	for _, e := range rd.Elements() {
		if _, live := r.index[e.ID()]; live {
			r.log.Warnw("insert replaces a live element", "id", e.ID())
		}
		r.index[e.ID()] = e
	}
	return rd
}

// link resolves the references of a constructed subtree against the global
// index and counts them.
func (r *Repository) link(rd *codec.Reader, ch *changeSet) {
	if rd == nil || len(rd.Elements()) == 0 {
		return
	}
	rd.Resolve(r.Get)
	for _, e := range rd.Elements() {
		r.addRefsOf(e)
	}
	root := rd.Elements()[0]
	if root.Parent() == nil && r.Root() == nil {
		r.rootID = root.ID()
	}
	ch.create(root)
}

// teardown strips the outbound references of every element in a recorded
// subtree that is about to disappear.
func (r *Repository) teardown(tree map[string]any) {
	for _, id := range codec.IDs(tree) {
		if e := r.index[id]; e != nil {
			r.purgeReferrer(e)
		}
	}
}

// unregister drops a recorded subtree from the index. Reference-index entries
// pointing into the subtree from outside it are returned so a revert can
// restore them.
func (r *Repository) unregister(tree map[string]any, ch *changeSet) map[string]map[string]int {
	ids := codec.IDs(tree)
	if len(ids) == 0 {
		return nil
	}
	inSubtree := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSubtree[id] = true
	}

	var inbound map[string]map[string]int
	for _, id := range ids {
		for referrer, n := range r.refs[id] {
			if inSubtree[referrer] {
				continue
			}
			if inbound == nil {
				inbound = make(map[string]map[string]int)
			}
			if inbound[id] == nil {
				inbound[id] = make(map[string]int)
			}
			inbound[id][referrer] = n
		}
		delete(r.refs, id)
	}

	root := r.index[ids[0]]
	for _, id := range ids {
		if e := r.index[id]; e != nil {
			r.purgeReferrer(e)
		}
		delete(r.index, id)
	}
	if root != nil {
		ch.remove(root)
	}
	return inbound
}

func (r *Repository) restoreInbound(inbound map[string]map[string]int) {
	for referee, referrers := range inbound {
		if !r.Contains(referee) {
			continue
		}
		for referrer, n := range referrers {
			if !r.Contains(referrer) {
				continue
			}
			if r.refs[referee] == nil {
				r.refs[referee] = make(map[string]int)
			}
			r.refs[referee][referrer] = n
		}
	}
}

func (r *Repository) field(id, name string) (domain.Element, domain.Attr, bool) {
	e := r.index[id]
	if e == nil {
		r.log.Warnw("field record targets a missing element", "id", id, "field", name)
		return nil, domain.Attr{}, false
	}
	a, ok := r.reg.Attr(e.TypeName(), name)
	if !ok {
		r.log.Warnw("field record targets an unknown field", "id", id, "type", e.TypeName(), "field", name)
		return nil, domain.Attr{}, false
	}
	return e, a, true
}

func (r *Repository) assign(id, name string, raw any, ch *changeSet) {
	e, a, ok := r.field(id, name)
	if !ok {
		return
	}
	v, err := codec.DecodeValue(a, raw, r.Get)
	if err != nil {
		r.log.Warnw("field assign skipped", "id", id, "field", name, "error", err)
		return
	}
	old := a.SlotIDs(e)
	if err := a.Set(e, v); err != nil {
		r.log.Warnw("field assign skipped", "id", id, "field", name, "error", err)
		return
	}
	for _, ref := range old {
		r.removeRef(ref, id)
	}
	for _, ref := range a.SlotIDs(e) {
		r.addRef(ref, id)
	}
	if c, ok := v.(domain.Element); ok && a.Kind == domain.KindObj && c != nil {
		c.SetParent(e)
	}
	ch.update(e)
}

func (r *Repository) insertAt(id, name, valueID string, index int, ch *changeSet) {
	e, a, ok := r.field(id, name)
	if !ok {
		return
	}
	var v any = domain.Ref(valueID)
	if a.Kind == domain.KindObjs {
		c := r.index[valueID]
		if c == nil {
			r.log.Warnw("field insert of a missing element skipped", "id", id, "field", name, "value", valueID)
			return
		}
		v = c
	}
	if err := a.InsertAt(e, v, index); err != nil {
		r.log.Warnw("field insert skipped", "id", id, "field", name, "error", err)
		return
	}
	r.addRef(valueID, id)
	if c, ok := v.(domain.Element); ok {
		c.SetParent(e)
	}
	ch.update(e)
}

func (r *Repository) removeAt(id, name, valueID string, index int, ch *changeSet) {
	e, a, ok := r.field(id, name)
	if !ok {
		return
	}
	ids := a.SlotIDs(e)
	pos := index
	if pos < 0 || pos >= len(ids) || ids[pos] != valueID {
		pos = slices.Index(ids, valueID)
	}
	if pos < 0 {
		r.log.Warnw("field remove of an absent value skipped", "id", id, "field", name, "value", valueID)
		return
	}
	if err := a.RemoveAt(e, pos); err != nil {
		r.log.Warnw("field remove skipped", "id", id, "field", name, "error", err)
		return
	}
	r.removeRef(valueID, id)
	ch.update(e)
}

func (r *Repository) reorder(id, name, valueID string, to int, ch *changeSet) {
	e, a, ok := r.field(id, name)
	if !ok {
		return
	}
	from := a.IndexOf(e, valueID)
	if from < 0 {
		r.log.Warnw("field reorder of an absent value skipped", "id", id, "field", name, "value", valueID)
		return
	}
	if err := a.Move(e, from, to); err != nil {
		r.log.Warnw("field reorder skipped", "id", id, "field", name, "error", err)
		return
	}
	ch.reordered = append(ch.reordered, reordering{owner: e, field: name})
}

func (r *Repository) relocate(id, name, fromID, toID string, at int, ch *changeSet) {
	e := r.index[id]
	from, fa, ok := r.field(fromID, name)
	if !ok || e == nil {
		return
	}
	to, ta, ok := r.field(toID, name)
	if !ok {
		return
	}

	if fa.Kind.IsMany() {
		if pos := fa.IndexOf(from, id); pos >= 0 {
			_ = fa.RemoveAt(from, pos)
		}
	} else {
		_ = fa.Set(from, nil)
	}
	r.removeRef(id, fromID)

	var err error
	if ta.Kind.IsMany() {
		err = ta.InsertAt(to, e, at)
	} else {
		err = ta.Set(to, e)
	}
	if err != nil {
		r.log.Warnw("field relocate could not place element", "id", id, "to", toID, "field", name, "error", err)
		return
	}
	r.addRef(id, toID)
	e.SetParent(to)
	ch.relocated = append(ch.relocated, relocation{elem: e, field: name, oldParent: from, newParent: to})
}
