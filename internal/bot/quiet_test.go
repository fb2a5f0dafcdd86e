package bot

import (
	"testing"
	"time"
)

func at(hm string) time.Time {
	t, _ := time.Parse("15:04", hm)
	return time.Date(2026, 8, 31, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func TestInQuietWindow(t *testing.T) {
	cases := []struct {
		now, start, end string
		want            bool
	}{
		{"10:00", "09:00", "18:00", true},
		{"08:59", "09:00", "18:00", false},
		{"18:00", "09:00", "18:00", false},

		// janela que cruza a meia-noite
		{"23:00", "21:00", "08:00", true},
		{"02:00", "21:00", "08:00", true},
		{"12:00", "21:00", "08:00", false},

		// janela vazia ou inválida
		{"12:00", "", "", false},
		{"12:00", "10:00", "10:00", false},
		{"12:00", "abc", "18:00", false},
	}

	for _, tc := range cases {
		if got := inQuietWindow(at(tc.now), tc.start, tc.end); got != tc.want {
			t.Errorf("inQuietWindow(%s, %q, %q) = %v, want %v", tc.now, tc.start, tc.end, got, tc.want)
		}
	}
}
