package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestActionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{"click", Click{X: 100, Y: 200, Button: MouseRight}},
		{"doubleClick", DoubleClick{X: 50, Y: 60, Button: MouseLeft}},
		{"drag", Drag{FromX: 1, FromY: 2, ToX: 300, ToY: 400}},
		{"scroll", Scroll{X: 10, Y: 20, DeltaX: -1.5, DeltaY: 3}},
		{"keyPress", KeyPress{KeyCode: 36, Character: "\r", Modifiers: ModCommand | ModShift}},
		{"keyPressPlain", KeyPress{KeyCode: 124}},
		{"typeText", TypeText{Text: "hello world"}},
		{"delay", Delay{Seconds: 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalAction(tt.action)
			if err != nil {
				t.Fatal(err)
			}
			got, err := UnmarshalAction(data)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.action {
				t.Errorf("round-trip = %#v, want %#v", got, tt.action)
			}
		})
	}
}

func TestActionEnvelopeShape(t *testing.T) {
	data, err := MarshalAction(Click{X: 1, Y: 2, Button: MouseLeft})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["type"] != "click" {
		t.Errorf("type = %v, want click", raw["type"])
	}
	// Only the click variant's fields are present.
	for _, forbidden := range []string{"fromX", "seconds", "text", "keyCode", "deltaX"} {
		if _, ok := raw[forbidden]; ok {
			t.Errorf("click envelope leaks field %q: %s", forbidden, data)
		}
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	_, err := UnmarshalAction([]byte(`{"type":"teleport","x":1}`))
	if err == nil || !strings.Contains(err.Error(), "teleport") {
		t.Errorf("err = %v, want unknown type error", err)
	}
}

func TestModifierNamesRoundTrip(t *testing.T) {
	mods := ModShift | ModCommand | ModFunction
	parsed, err := ParseModifiers(mods.Names())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != mods {
		t.Errorf("round-trip = %b, want %b", parsed, mods)
	}
}

func TestParseMouseButton(t *testing.T) {
	tests := []struct {
		input   string
		want    MouseButton
		wantErr bool
	}{
		{"left", MouseLeft, false},
		{"Right", MouseRight, false},
		{"center", MouseCenter, false},
		{"middle", MouseCenter, false},
		{"fourth", MouseLeft, true},
	}
	for _, tt := range tests {
		got, err := ParseMouseButton(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMouseButton(%q) error = %v", tt.input, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMouseButton(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
