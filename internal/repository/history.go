package repository

import "modelrepo/internal/oplog"

// DefaultHistoryLimit bounds the undo and redo stacks.
const DefaultHistoryLimit = 100

// history is a bounded stack. Pushing past the limit evicts the oldest entry.
type history struct {
	limit int
	items []*oplog.Operation
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit}
}

func (h *history) push(op *oplog.Operation) {
	h.items = append(h.items, op)
	if over := len(h.items) - h.limit; over > 0 {
		clear(h.items[:over])
		h.items = h.items[over:]
	}
}

func (h *history) pop() *oplog.Operation {
	if len(h.items) == 0 {
		return nil
	}
	op := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = nil
	h.items = h.items[:len(h.items)-1]
	return op
}

func (h *history) peek() *oplog.Operation {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[len(h.items)-1]
}

func (h *history) len() int {
	return len(h.items)
}

func (h *history) reset() {
	clear(h.items)
	h.items = nil
}
