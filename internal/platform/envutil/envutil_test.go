package envutil

import "testing"

func TestBool(t *testing.T) {
	cases := map[string]bool{"true": true, "ON": true, "0": false, "no": false}
	for raw, want := range cases {
		t.Setenv("CS_TEST_BOOL", raw)
		if got := Bool("CS_TEST_BOOL", !want); got != want {
			t.Fatalf("Bool(%q): got=%v want=%v", raw, got, want)
		}
	}
	t.Setenv("CS_TEST_BOOL", "maybe")
	if got := Bool("CS_TEST_BOOL", true); !got {
		t.Fatalf("unparseable value should fall back to default")
	}
}

func TestIntAndFloat(t *testing.T) {
	t.Setenv("CS_TEST_INT", "42")
	if got := Int("CS_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: got=%d want=42", got)
	}
	t.Setenv("CS_TEST_INT", "x")
	if got := Int("CS_TEST_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got=%d want=7", got)
	}
	t.Setenv("CS_TEST_FLOAT", "0.5")
	if got := Float("CS_TEST_FLOAT", 0); got != 0.5 {
		t.Fatalf("Float: got=%v want=0.5", got)
	}
}

func TestCSV(t *testing.T) {
	t.Setenv("CS_TEST_CSV", " Doctor, ,Patient ")
	got := CSV("CS_TEST_CSV")
	if len(got) != 2 || got[0] != "Doctor" || got[1] != "Patient" {
		t.Fatalf("CSV: got=%v", got)
	}
	t.Setenv("CS_TEST_CSV", "")
	if got := CSV("CS_TEST_CSV"); got != nil {
		t.Fatalf("CSV empty: got=%v want=nil", got)
	}
}
