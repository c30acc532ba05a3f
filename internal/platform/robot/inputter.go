// Package robot implements the platform backends on top of robotgo (input
// synthesis, screen capture) and gohook (global input observation).
package robot

import (
	"fmt"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/autodoc-cli/internal/model"
)

// Inputter posts synthetic input through robotgo.
type Inputter struct{}

// NewInputter returns a robotgo-backed inputter.
func NewInputter() *Inputter { return &Inputter{} }

func buttonName(b model.MouseButton) string {
	switch b {
	case model.MouseRight:
		return "right"
	case model.MouseCenter:
		return "center"
	default:
		return "left"
	}
}

// MoveMouse moves the pointer to global screen coordinates.
func (in *Inputter) MoveMouse(x, y float64) error {
	robotgo.Move(int(x), int(y))
	return nil
}

// ButtonDown presses a mouse button at a position. robotgo has no notion of
// a click count on raw toggles; multi-click tagging comes from the pacing
// of consecutive down/up pairs.
func (in *Inputter) ButtonDown(x, y float64, button model.MouseButton, clickCount int) error {
	robotgo.Move(int(x), int(y))
	robotgo.Toggle(buttonName(button))
	return nil
}

// ButtonUp releases a mouse button at a position.
func (in *Inputter) ButtonUp(x, y float64, button model.MouseButton, clickCount int) error {
	robotgo.Toggle(buttonName(button), "up")
	return nil
}

// Scroll posts a wheel event at a position.
func (in *Inputter) Scroll(x, y float64, deltaX, deltaY float64) error {
	robotgo.Move(int(x), int(y))
	robotgo.Scroll(int(deltaX), int(deltaY))
	return nil
}

// KeyDown holds the modifiers, then presses the key.
func (in *Inputter) KeyDown(keyCode uint16, mods model.Modifiers) error {
	name, err := keyName(keyCode)
	if err != nil {
		return err
	}
	for _, mod := range modNames(mods) {
		robotgo.KeyToggle(mod, "down")
	}
	robotgo.KeyToggle(name, "down")
	return nil
}

// KeyUp releases the key, then the modifiers in reverse order.
func (in *Inputter) KeyUp(keyCode uint16, mods model.Modifiers) error {
	name, err := keyName(keyCode)
	if err != nil {
		return err
	}
	robotgo.KeyToggle(name, "up")
	names := modNames(mods)
	for i := len(names) - 1; i >= 0; i-- {
		robotgo.KeyToggle(names[i], "up")
	}
	return nil
}

// TypeChar types a single character by its code point.
func (in *Inputter) TypeChar(ch rune) error {
	robotgo.TypeStr(string(ch))
	return nil
}

func modNames(mods model.Modifiers) []string {
	var names []string
	if mods.Has(model.ModShift) {
		names = append(names, "shift")
	}
	if mods.Has(model.ModControl) {
		names = append(names, "ctrl")
	}
	if mods.Has(model.ModOption) {
		names = append(names, "alt")
	}
	if mods.Has(model.ModCommand) {
		names = append(names, "cmd")
	}
	return names
}

// macOS virtual key codes to robotgo key names. Printable keys replay
// through typeText, so this table only needs the keys the classifier emits
// as discrete keyPress actions plus common letters for custom chords.
var keyNames = map[uint16]string{
	36:  "enter",
	48:  "tab",
	49:  "space",
	51:  "backspace",
	53:  "esc",
	76:  "enter",
	115: "home",
	116: "pageup",
	117: "delete",
	119: "end",
	121: "pagedown",
	123: "left",
	124: "right",
	125: "down",
	126: "up",

	0: "a", 1: "s", 2: "d", 3: "f", 4: "h", 5: "g", 6: "z", 7: "x",
	8: "c", 9: "v", 11: "b", 12: "q", 13: "w", 14: "e", 15: "r",
	16: "y", 17: "t", 31: "o", 32: "u", 34: "i", 35: "p", 37: "l",
	38: "j", 40: "k", 45: "n", 46: "m",

	18: "1", 19: "2", 20: "3", 21: "4", 22: "5", 23: "6",
	25: "9", 26: "7", 28: "8", 29: "0",
}

func keyName(code uint16) (string, error) {
	if name, ok := keyNames[code]; ok {
		return name, nil
	}
	return "", fmt.Errorf("no key mapping for code %d", code)
}
