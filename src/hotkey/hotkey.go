package hotkey

import (
	"fmt"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding maps a key combination such as "Ctrl+Alt+F" to a callback fired
// once per press of the full combination. Releases are ignored.
type Binding struct {
	Name    string
	Combo   string
	OnPress func()
}

// Listener owns the global keyboard hook.
type Listener struct {
	once sync.Once
	done chan struct{}
}

// Listen installs the global hook and dispatches matching presses. Bindings
// whose keys cannot be resolved are skipped with a log line; Listen fails
// only when none are usable.
func Listen(bindings []Binding) (*Listener, error) {
	m := newMatcher()
	for _, b := range bindings {
		if b.Combo == "" {
			continue
		}
		keys := parseHotkey(b.Combo)
		groups := make([][]uint16, 0, len(keys))
		for _, k := range keys {
			codes := keyNameToKeycodes(k)
			if len(codes) == 0 {
				log.Printf("ERROR: Cannot map key '%s' in %s binding '%s', skipping", k, b.Name, b.Combo)
				groups = nil
				break
			}
			groups = append(groups, codes)
		}
		if len(groups) == 0 {
			continue
		}
		m.add(b.Name, groups, b.OnPress)
		log.Printf("Hotkey %s bound to %s (%v)", b.Name, b.Combo, keys)
	}
	if m.empty() {
		return nil, fmt.Errorf("no valid hotkey bindings")
	}

	l := &Listener{done: make(chan struct{})}
	go l.run(m)
	return l, nil
}

func (l *Listener) run(m *matcher) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey goroutine: %v", r)
		}
	}()

	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return
	}
	for ev := range evChan {
		for _, fire := range m.dispatch(ev) {
			fire()
		}
	}
	log.Printf("Hotkey event channel closed")
}

// dispatch feeds one hook event to the matcher. gohook reports the physical
// press as KeyHold; KeyDown is the typed-character event and carries no
// keycode, so it is ignored.
func (m *matcher) dispatch(ev gohook.Event) []func() {
	switch ev.Kind {
	case gohook.KeyHold:
		return m.press(ev.Keycode)
	case gohook.KeyUp:
		m.release(ev.Keycode)
	}
	return nil
}

// Stop removes the hook and waits for the dispatch goroutine to exit.
func (l *Listener) Stop() {
	l.once.Do(func() {
		gohook.End()
		<-l.done
	})
}
