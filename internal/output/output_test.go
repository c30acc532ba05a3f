package output

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestPrintYAML(t *testing.T) {
	result := ListResult{
		Sequences: []SequenceSummary{
			{Name: "login-flow", Actions: 12, Duration: 8.4, Created: "2026-08-01T10:00:00Z"},
		},
	}

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := PrintYAML(result)
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	// YAML output should be multi-line
	if bytes.Count([]byte(output), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", output)
	}

	// Verify it's valid YAML
	var decoded ListResult
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Sequences) != 1 {
		t.Fatalf("sequences: got %d, want 1", len(decoded.Sequences))
	}
	if decoded.Sequences[0].Name != "login-flow" {
		t.Errorf("name: got %q, want %q", decoded.Sequences[0].Name, "login-flow")
	}
}

func TestDocumentResult_OmitEmpty(t *testing.T) {
	result := DocumentResult{
		Name:      "settings",
		Directory: "/tmp/out",
		Frames:    3,
		Analyzed:  3,
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	// Failed and Warnings should be omitted when empty
	if _, ok := m["failed"]; ok {
		t.Error("empty failed list should be omitted")
	}
	if _, ok := m["warnings"]; ok {
		t.Error("empty warnings should be omitted")
	}
	// Frames should always be present
	if _, ok := m["frames"]; !ok {
		t.Error("frames should always be present")
	}
}

func TestPrint_UnsupportedFormat(t *testing.T) {
	saved := OutputFormat
	defer func() { OutputFormat = saved }()

	OutputFormat = Format("xml")
	if err := Print(struct{}{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
