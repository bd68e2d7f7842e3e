package forecast

import "fmt"

// Priority orders validation messages by the stage that produced them. Lower sorts first.
// It is not a severity: every message is reported.
type Priority int

const (
	PriorityForecastChecks Priority = iota
	PriorityDateAlignment
	PriorityQuantilesAndValues
	PriorityQuantilesAsAGroup
)

func (p Priority) String() string {
	switch p {
	case PriorityForecastChecks:
		return "forecast checks"
	case PriorityDateAlignment:
		return "date alignment"
	case PriorityQuantilesAndValues:
		return "quantiles and values"
	case PriorityQuantilesAsAGroup:
		return "quantiles as a group"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Message is one validation finding.
type Message struct {
	Priority Priority `json:"priority"`
	Text     string   `json:"message"`
}

func Messagef(p Priority, format string, args ...any) Message {
	return Message{Priority: p, Text: fmt.Sprintf(format, args...)}
}

// Less orders messages by (priority, text).
func (m Message) Less(o Message) bool {
	if m.Priority != o.Priority {
		return m.Priority < o.Priority
	}
	return m.Text < o.Text
}
