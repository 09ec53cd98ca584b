package chat

// History is the append-only message sequence for one session. Messages keep
// their chronological insertion order; there is no reordering, compaction, or
// eviction, so a long-lived session grows without bound.
//
// A History is not safe for concurrent use. The registry hands out one
// History per session id and the caller is expected to run a single
// conversation turn at a time against it.
type History struct {
	messages []Message
}

// Append adds a message to the end of the history.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of the history in insertion order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len reports the number of messages in the history.
func (h *History) Len() int {
	return len(h.messages)
}

// Clear removes all messages.
func (h *History) Clear() {
	h.messages = h.messages[:0]
}
