package mode

import (
	"fmt"
	"strings"
)

// Command is an edge-triggered request from a key binding, the tray or a
// delegated client.
type Command int

const (
	FollowToggle Command = iota
	SetRect
	SetWindow
	Reset
)

// Commands lists every command in binding order.
var Commands = []Command{FollowToggle, SetRect, SetWindow, Reset}

func (c Command) String() string {
	switch c {
	case FollowToggle:
		return "follow"
	case SetRect:
		return "rect"
	case SetWindow:
		return "window"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Description is the human readable label used by the tray and logs.
func (c Command) Description() string {
	switch c {
	case FollowToggle:
		return "Follow mouse"
	case SetRect:
		return "Set rectangle"
	case SetWindow:
		return "Zoom to active window"
	case Reset:
		return "Reset"
	default:
		return c.String()
	}
}

// ParseCommand accepts the names produced by String, case-insensitively.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "follow", "follow-toggle":
		return FollowToggle, nil
	case "rect", "rectangle":
		return SetRect, nil
	case "window":
		return SetWindow, nil
	case "reset":
		return Reset, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}
