package hotkey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding pairs a combination such as "Ctrl+Alt+T" with the action it fires.
type Binding struct {
	Combo  string
	Action func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// combo tracks which keys of one binding are currently held.
type combo struct {
	label  string
	keys   []keyState
	action func()
}

func newCombo(b Binding) (*combo, bool) {
	c := &combo{label: b.Combo, action: b.Action}
	for _, keyName := range parseHotkey(b.Combo) {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: Cannot map key '%s' to rawcodes, hotkey may not work correctly", keyName)
			continue
		}
		c.keys = append(c.keys, keyState{name: keyName, rawcodes: rawcodes})
	}
	return c, len(c.keys) > 0
}

// press records a key down and reports whether the whole combination is now
// held. A completed combination resets so it fires once per press.
func (c *combo) press(rawcode uint16) bool {
	for i := range c.keys {
		if matches(c.keys[i].rawcodes, rawcode) {
			c.keys[i].pressed = true
		}
	}
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) release(rawcode uint16) {
	for i := range c.keys {
		if matches(c.keys[i].rawcodes, rawcode) {
			c.keys[i].pressed = false
		}
	}
}

func matches(rawcodes []uint16, rawcode uint16) bool {
	for _, r := range rawcodes {
		if r == rawcode {
			return true
		}
	}
	return false
}

// Listen registers global hotkeys and runs each binding's action when its
// combination is pressed. Actions run on the hook goroutine and must not block.
func Listen(bindings ...Binding) {
	var combos []*combo
	for _, b := range bindings {
		if b.Combo == "" {
			continue
		}
		c, ok := newCombo(b)
		if !ok {
			log.Printf("ERROR: No valid keys in hotkey configuration '%s'", b.Combo)
			continue
		}
		log.Printf("Hotkey listener configured for: %s", b.Combo)
		combos = append(combos, c)
	}
	if len(combos) == 0 {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		var mu sync.Mutex
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				var fire []func()
				mu.Lock()
				for _, c := range combos {
					if c.press(ev.Rawcode) {
						log.Printf("Hotkey activated: %s", c.label)
						fire = append(fire, c.action)
					}
				}
				mu.Unlock()
				for _, f := range fire {
					if f != nil {
						f()
					}
				}
			case gohook.KeyUp:
				mu.Lock()
				for _, c := range combos {
					c.release(ev.Rawcode)
				}
				mu.Unlock()
			}
		}
		log.Printf("Event channel closed")
	}()
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

var specialKeys = map[string][]uint16{
	// Modifiers: left and right variants
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"esc":       {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

var keyAliases = map[string]string{
	"win":    "cmd",
	"super":  "cmd",
	"return": "enter",
	"escape": "esc",
	"del":    "delete",
	"ins":    "insert",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes
// Returns a slice of rawcodes (e.g., both left and right variants for modifiers)
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if alias, ok := keyAliases[keyName]; ok {
		keyName = alias
	}
	if codes, ok := specialKeys[keyName]; ok {
		return codes
	}

	if len(keyName) == 1 {
		switch ch := keyName[0]; {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16(ch-'a') + 65} // VK 0x41-0x5A
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(ch-'0') + 48} // VK 0x30-0x39
		}
	}

	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
