package params

import "testing"

func TestID(t *testing.T) {
	if id, err := ID("42"); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc", "1.5"} {
		if _, err := ID(raw); err != ErrInvalidID {
			t.Fatalf("expected ErrInvalidID for %q, got %v", raw, err)
		}
	}
}

func TestBool(t *testing.T) {
	if v, err := Bool("TRUE"); err != nil || !v {
		t.Fatalf("expected true, got %v (%v)", v, err)
	}
	if v, err := Bool("false"); err != nil || v {
		t.Fatalf("expected false, got %v (%v)", v, err)
	}
	for _, raw := range []string{"", "1", "yes"} {
		if _, err := Bool(raw); err != ErrInvalidBool {
			t.Fatalf("expected ErrInvalidBool for %q, got %v", raw, err)
		}
	}
}
