package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabkit/internal/core"
)

func TestIndex(t *testing.T) {
	tests := []struct {
		name         string
		requireKey   bool
		wantNotice   bool
		wantDisabled int
	}{
		{"open server", false, false, 0},
		{"api key required", true, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Index(IndexParams{
				Formats:          core.OutputFormats,
				DefaultChunkSize: 500,
				RequireAPIKey:    tt.requireKey,
			}).Render(context.Background(), &buf)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			out := buf.String()

			if got := strings.Contains(out, `id="api-key-notice"`); got != tt.wantNotice {
				t.Errorf("notice shown = %v, want %v", got, tt.wantNotice)
			}
			if got := strings.Count(out, `type="submit" disabled`); got != tt.wantDisabled {
				t.Errorf("disabled buttons = %d, want %d", got, tt.wantDisabled)
			}
			if strings.Count(out, `name="delimiter"`) != 2 {
				t.Error("expected a delimiter select on both forms")
			}
			if !strings.Contains(out, `value="500"`) {
				t.Error("default chunk size not rendered")
			}
		})
	}
}
