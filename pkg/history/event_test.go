package history

import "testing"

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionSent, "SENT"},
		{ActionSuppressed, "SUPPRESSED"},
		{ActionFailed, "FAILED"},
		{ActionStarted, "STARTED"},
		{ActionStopped, "STOPPED"},
		{Action(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("suppressed")
	if err != nil || a != ActionSuppressed {
		t.Errorf("ParseAction(suppressed) = %v, %v", a, err)
	}
	if _, err := ParseAction("bogus"); err == nil {
		t.Error("expected error for unknown action")
	}
}
