package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/platform"
	"github.com/mj1618/autodoc-cli/internal/store"
)

// StringParam extracts a string from an MCP argument map with a default.
func StringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

// IntParam extracts an int from an MCP argument map with a default.
// JSON numbers arrive as float64.
func IntParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// FloatParam extracts a float64 from an MCP argument map with a default.
func FloatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

// BoolParam extracts a bool from an MCP argument map with a default.
func BoolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// namedKeyCodes maps key names to macOS virtual key codes for the
// autocapture --key flag.
var namedKeyCodes = map[string]uint16{
	"enter":    36,
	"return":   36,
	"tab":      48,
	"space":    49,
	"delete":   51,
	"esc":      53,
	"escape":   53,
	"left":     123,
	"right":    124,
	"down":     125,
	"up":       126,
	"home":     115,
	"end":      119,
	"pageup":   116,
	"pagedown": 121,
}

// ParseKeySpec parses a key combo like "right" or "cmd+right" into a key
// code and modifier set.
func ParseKeySpec(spec string) (uint16, model.Modifiers, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return 0, 0, fmt.Errorf("empty key spec")
	}
	key := parts[len(parts)-1]
	mods, err := model.ParseModifiers(parts[:len(parts)-1])
	if err != nil {
		return 0, 0, err
	}
	code, ok := namedKeyCodes[key]
	if !ok {
		return 0, 0, fmt.Errorf("unknown key %q", key)
	}
	return code, mods, nil
}

// ParseClickSpec parses an "x,y" coordinate pair for the autocapture
// --click flag.
func ParseClickSpec(spec string) (float64, float64, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid click %q: expected x,y", spec)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid click %q: %w", spec, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid click %q: %w", spec, err)
	}
	return x, y, nil
}

// regionFromFlags resolves the shared --bbox / --pid capture target flags.
// With neither set, the full screen is captured.
func regionFromFlags(cmd *cobra.Command) (model.Region, error) {
	bbox, _ := cmd.Flags().GetString("bbox")
	pid, _ := cmd.Flags().GetInt("pid")
	if bbox != "" && pid != 0 {
		return model.Region{}, fmt.Errorf("--bbox and --pid are mutually exclusive")
	}
	if bbox != "" {
		return platform.ParseBBox(bbox)
	}
	if pid != 0 {
		return model.Window(pid), nil
	}
	return model.FullScreen(), nil
}

// openStore opens the sequence store at its configured location.
func openStore() (*store.Store, error) {
	return store.Open(settings.SequenceDir())
}
