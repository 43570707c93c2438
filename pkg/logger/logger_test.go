package logger

import "testing"

func TestNew(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("New(debug) failed: %v", err)
	}
	if !l.Core().Enabled(-1) {
		t.Error("debug level should be enabled")
	}

	if _, err := New("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
