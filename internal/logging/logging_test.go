package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level     string
		wantWarn  bool
		wantDebug bool
	}{
		{"", true, false},
		{"warn", true, false},
		{"DEBUG", true, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Setup(tt.level, &buf); err != nil {
				t.Fatal(err)
			}
			log.Warn().Str("city", "Mecca").Msg("location fallback")
			log.Debug().Msg("cache hit")

			out := buf.String()
			if got := strings.Contains(out, "location fallback"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v:\n%s", got, tt.wantWarn, out)
			}
			if got := strings.Contains(out, "cache hit"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if tt.wantWarn && !strings.Contains(out, "city=Mecca") {
				t.Errorf("fields missing from console output:\n%s", out)
			}
			if strings.Contains(out, "\x1b[") {
				t.Error("buffer output should not be colored")
			}
		})
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	if err := Setup("loud", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
