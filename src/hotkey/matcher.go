package hotkey

import "sync"

type combo struct {
	name string
	// keys holds one group per key of the combination; any code in a group
	// satisfies it (left/right modifier variants).
	keys    [][]uint16
	onPress func()
	latched bool
}

// matcher tracks held keys and reports combinations on their press edge.
type matcher struct {
	mu     sync.Mutex
	held   map[uint16]bool
	combos []*combo
}

func newMatcher() *matcher {
	return &matcher{held: make(map[uint16]bool)}
}

func (m *matcher) add(name string, keys [][]uint16, onPress func()) {
	m.combos = append(m.combos, &combo{name: name, keys: keys, onPress: onPress})
}

func (m *matcher) empty() bool { return len(m.combos) == 0 }

// press records a key down and returns callbacks for every combination that
// just became fully held. Callbacks run outside the lock. Code 0 is not a
// physical key and is ignored.
func (m *matcher) press(code uint16) []func() {
	if code == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.held[code] = true
	var fire []func()
	for _, c := range m.combos {
		if c.latched || !m.satisfied(c) {
			continue
		}
		c.latched = true
		if c.onPress != nil {
			fire = append(fire, c.onPress)
		}
	}
	return fire
}

// release records a key up and re-arms combinations that are no longer held.
func (m *matcher) release(code uint16) {
	if code == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, code)
	for _, c := range m.combos {
		if c.latched && !m.satisfied(c) {
			c.latched = false
		}
	}
}

func (m *matcher) satisfied(c *combo) bool {
	for _, group := range c.keys {
		ok := false
		for _, code := range group {
			if m.held[code] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
