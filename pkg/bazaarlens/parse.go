package bazaarlens

import (
	"github.com/bazaarlens/bazaarlens-go/internal/parser"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// Event is a parsed Player.log line.
type Event = event.Event

// ParseLine parses a single Player.log line.
// It returns nil when the line is not one the tracker reacts to;
// malformed lines are treated the same way and never produce an error.
//
// Example:
//
//	ev := bazaarlens.ParseLine("Sold Card itm_3")
//	if ev != nil {
//	    fmt.Println(ev.Kind, ev.InstanceID)
//	}
func ParseLine(line string) *Event {
	return parser.Parse(line)
}
