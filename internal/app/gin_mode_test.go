package app

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
)

type countingLogger struct{ warns int }

func (*countingLogger) Infof(context.Context, string, ...any)  {}
func (l *countingLogger) Warnf(context.Context, string, ...any) { l.warns++ }
func (*countingLogger) Errorf(context.Context, string, ...any) {}

func TestApplyGinMode(t *testing.T) {
	prev := gin.Mode()
	t.Cleanup(func() { gin.SetMode(prev) })

	tests := []struct {
		in        string
		wantMode  string
		wantWarns int
	}{
		{in: "release", wantMode: gin.ReleaseMode},
		{in: " TEST ", wantMode: gin.TestMode},
		{in: "", wantMode: gin.DebugMode},
		{in: "debug", wantMode: gin.DebugMode},
		{in: "verbose", wantMode: gin.DebugMode, wantWarns: 1},
	}

	for _, tt := range tests {
		log := &countingLogger{}
		applyGinMode(context.Background(), tt.in, log)
		if got := gin.Mode(); got != tt.wantMode {
			t.Errorf("mode(%q) = %q, want %q", tt.in, got, tt.wantMode)
		}
		if log.warns != tt.wantWarns {
			t.Errorf("mode(%q) warns = %d, want %d", tt.in, log.warns, tt.wantWarns)
		}
	}
}
