package repository

import (
	"fmt"

	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
)

// EventKind identifies a repository notification.
type EventKind int

const (
	EventCreated EventKind = iota
	EventUpdated
	EventDeleted
	EventReordered
	EventRelocated
	EventModified
	EventBeforeExecuteOperation
	EventOperationExecuted
	EventBeforeUndo
	EventUndo
	EventBeforeRedo
	EventRedo
)

var eventNames = [...]string{
	"created", "updated", "deleted", "reordered", "relocated", "modified",
	"beforeExecuteOperation", "operationExecuted", "beforeUndo", "undo", "beforeRedo", "redo",
}

func (k EventKind) String() string {
	if int(k) >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event carries live element pointers, never copies.
type Event struct {
	Kind EventKind
	// Elements is set for created, updated and deleted.
	Elements []domain.Element
	// Element is set for reordered and relocated.
	Element domain.Element
	// Field, OldParent and NewParent are set for relocated; Field also for reordered.
	Field     string
	OldParent domain.Element
	NewParent domain.Element
	// Operation is set for every operation-level event.
	Operation *oplog.Operation
}

// Listener receives events synchronously. Listeners must not call DoOperation,
// Undo or Redo; those return ErrBusy while events are being delivered.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

type emitter struct {
	next      int
	listeners map[EventKind][]subscription
}

// Subscribe registers fn for kind. Listeners run in registration order. The
// returned function removes the subscription.
func (r *Repository) Subscribe(kind EventKind, fn Listener) func() {
	e := &r.events
	if e.listeners == nil {
		e.listeners = make(map[EventKind][]subscription)
	}
	e.next++
	id := e.next
	e.listeners[kind] = append(e.listeners[kind], subscription{id: id, fn: fn})
	return func() {
		subs := e.listeners[kind]
		for i, s := range subs {
			if s.id == id {
				e.listeners[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Repository) emit(ev Event) {
	for _, s := range r.events.listeners[ev.Kind] {
		r.deliver(s, ev)
	}
}

func (r *Repository) deliver(s subscription, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("event listener panicked",
				"event", ev.Kind.String(),
				"listener", s.id,
				"panic", p,
			)
		}
	}()
	s.fn(ev)
}
