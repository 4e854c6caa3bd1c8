package envutil

import "testing"

func TestGetEnvFallsBackOnEmpty(t *testing.T) {
	t.Setenv("EVENTOPS_TEST_STR", "  ")
	if got := GetEnv("EVENTOPS_TEST_STR", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv: want=%q got=%q", "fallback", got)
	}
	t.Setenv("EVENTOPS_TEST_STR", "set")
	if got := GetEnv("EVENTOPS_TEST_STR", "fallback", nil); got != "set" {
		t.Fatalf("GetEnv: want=%q got=%q", "set", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("EVENTOPS_TEST_INT", "42")
	if got := GetEnvAsInt("EVENTOPS_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("GetEnvAsInt: want=%d got=%d", 42, got)
	}
	t.Setenv("EVENTOPS_TEST_INT", "nope")
	if got := GetEnvAsInt("EVENTOPS_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt (invalid): want=%d got=%d", 7, got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("EVENTOPS_TEST_BOOL", "on")
	if !GetEnvAsBool("EVENTOPS_TEST_BOOL", false, nil) {
		t.Fatalf("GetEnvAsBool: want=true")
	}
	t.Setenv("EVENTOPS_TEST_BOOL", "maybe")
	if GetEnvAsBool("EVENTOPS_TEST_BOOL", false, nil) {
		t.Fatalf("GetEnvAsBool (invalid): want default false")
	}
}
