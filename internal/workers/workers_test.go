package workers

import (
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	got := Default()

	if got < 1 {
		t.Errorf("Default() = %d, want >= 1", got)
	}

	max := runtime.GOMAXPROCS(0)
	if got > max {
		t.Errorf("Default() = %d, want <= GOMAXPROCS (%d)", got, max)
	}
}

func TestDefaultOverride(t *testing.T) {
	t.Setenv("PICPURGE_WORKERS", "7")

	if got := Default(); got != 7 {
		t.Errorf("Default() with override = %d, want 7", got)
	}
}

func TestDefaultInvalidOverride(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "non-numeric", value: "lots"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PICPURGE_WORKERS", tt.value)

			if got := Default(); got < 1 {
				t.Errorf("Default() = %d, want >= 1", got)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		limit     int
		want      int
	}{
		{name: "within bounds", requested: 4, limit: 8, want: 4},
		{name: "above limit", requested: 16, limit: 8, want: 8},
		{name: "zero requested", requested: 0, limit: 8, want: 1},
		{name: "negative requested", requested: -2, limit: 0, want: 1},
		{name: "no limit", requested: 100, limit: 0, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.requested, tt.limit); got != tt.want {
				t.Errorf("Clamp(%d, %d) = %d, want %d", tt.requested, tt.limit, got, tt.want)
			}
		})
	}
}
