package platform

import (
	"testing"

	"github.com/mj1618/autodoc-cli/internal/model"
)

func TestParseBBox(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Region
		wantErr bool
	}{
		{in: "0,0,1920,1080", want: model.Rect(0, 0, 1920, 1080)},
		{in: " 10, 20, 300, 400 ", want: model.Rect(10, 20, 300, 400)},
		{in: "10,20,300", wantErr: true},
		{in: "10,20,300,400,500", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "0,0,0,100", wantErr: true},
		{in: "0,0,100,-5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBBox(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
