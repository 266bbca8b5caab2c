package hud

// MessageLog keeps the most recent combat narration for display.
type MessageLog struct {
	max  int
	msgs []string
}

// NewMessageLog returns a log holding at most max messages.
func NewMessageLog(max int) *MessageLog {
	if max < 1 {
		max = 1
	}
	return &MessageLog{max: max}
}

// Narrate appends msg, dropping the oldest message when full.
func (l *MessageLog) Narrate(msg string) {
	l.msgs = append(l.msgs, msg)
	if over := len(l.msgs) - l.max; over > 0 {
		l.msgs = append(l.msgs[:0], l.msgs[over:]...)
	}
}

// Messages returns the retained messages, oldest first.
func (l *MessageLog) Messages() []string {
	return append([]string(nil), l.msgs...)
}

// Latest returns the newest message, or "".
func (l *MessageLog) Latest() string {
	if len(l.msgs) == 0 {
		return ""
	}
	return l.msgs[len(l.msgs)-1]
}
