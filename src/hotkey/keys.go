package hotkey

import (
	"strings"

	gohook "github.com/robotn/gohook"
)

// modifierVariants lists the keycode names that satisfy a modifier,
// covering both sides of the keyboard.
var modifierVariants = map[string][]string{
	"ctrl":  {"ctrl", "rctrl"},
	"alt":   {"alt", "ralt"},
	"shift": {"shift", "rshift"},
	"cmd":   {"cmd", "rcmd"},
}

var keyAliases = map[string]string{
	"return": "enter",
	"escape": "esc",
	"del":    "delete",
	"ins":    "insert",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	keys := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "option":
			part = "alt"
		case "win", "super", "meta":
			part = "cmd"
		}
		if alias, ok := keyAliases[part]; ok {
			part = alias
		}
		keys = append(keys, part)
	}

	return keys
}

// keyNameToKeycodes resolves a normalized key name to hook keycodes.
func keyNameToKeycodes(keyName string) []uint16 {
	return lookupKeycodes(keyName, gohook.Keycode)
}

func lookupKeycodes(keyName string, table map[string]uint16) []uint16 {
	names := modifierVariants[keyName]
	if names == nil {
		names = []string{keyName}
	}
	var codes []uint16
	for _, n := range names {
		if code, ok := table[n]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}
