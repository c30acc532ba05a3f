package cmd

import (
	"testing"

	"github.com/mj1618/autodoc-cli/internal/output"
)

func TestRootFormatFlag(t *testing.T) {
	saved := output.OutputFormat
	defer func() {
		output.OutputFormat = saved
		rootCmd.PersistentFlags().Set("format", "yaml")
	}()

	tests := []struct {
		format  string
		want    output.Format
		wantErr bool
	}{
		{format: "yaml", want: output.FormatYAML},
		{format: "json", want: output.FormatJSON},
		{format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if err := rootCmd.PersistentFlags().Set("format", tt.format); err != nil {
				t.Fatal(err)
			}
			err := rootCmd.PersistentPreRunE(rootCmd, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if output.OutputFormat != tt.want {
				t.Errorf("format: got %s, want %s", output.OutputFormat, tt.want)
			}
		})
	}
}

func TestJobFromFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
		ok   bool
	}{
		{
			name: "key job",
			args: map[string]string{"name": "slides", "count": "5", "key": "right"},
			ok:   true,
		},
		{
			name: "click job",
			args: map[string]string{"name": "wizard", "count": "3", "click": "100,200"},
			ok:   true,
		},
		{
			name: "missing action",
			args: map[string]string{"name": "slides", "count": "5"},
		},
		{
			name: "both actions",
			args: map[string]string{"name": "slides", "count": "5", "key": "right", "click": "1,2"},
		},
		{
			name: "zero count",
			args: map[string]string{"name": "slides", "count": "0", "key": "right"},
		},
		{
			name: "missing name",
			args: map[string]string{"count": "5", "key": "right"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := autocaptureCmd.Flags()
			defer func() {
				flags.Set("name", "")
				flags.Set("count", "0")
				flags.Set("key", "")
				flags.Set("click", "")
			}()
			for k, v := range tt.args {
				if err := flags.Set(k, v); err != nil {
					t.Fatal(err)
				}
			}
			_, err := jobFromFlags(autocaptureCmd)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
