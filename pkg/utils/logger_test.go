package utils

import "testing"

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%v) returned nil", debug)
		}
		if debug != logger.Core().Enabled(-1) { // -1 = zap DebugLevel
			t.Errorf("NewLogger(%v): debug level enabled = %v", debug, !debug)
		}
		_ = logger.Sync()
	}
}
