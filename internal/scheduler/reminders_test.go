package scheduler

import (
	"strings"
	"testing"
	"time"
)

func TestPreviousDayRange(t *testing.T) {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, loc)

	start, end := previousDayRange(now)

	wantStart := time.Date(2026, 8, 30, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)

	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("previousDayRange = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestPreviousDayRangeCrossesMonth(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	start, end := previousDayRange(now)

	if start.Day() != 31 || start.Month() != time.August {
		t.Errorf("start = %v, want 31/08", start)
	}
	if !end.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestReminderMessages(t *testing.T) {
	bday := birthdayMessage("Maria", "Studio Bela")
	if !strings.Contains(bday, "Maria") || !strings.Contains(bday, "Studio Bela") {
		t.Errorf("mensagem de aniversário sem cliente ou salão: %q", bday)
	}

	follow := followUpMessage("Maria", "Studio Bela")
	if !strings.Contains(follow, "Maria") || !strings.Contains(follow, "Studio Bela") {
		t.Errorf("mensagem de pós-atendimento sem cliente ou salão: %q", follow)
	}
	if !strings.Contains(follow, "agendar") {
		t.Errorf("pós-atendimento sem convite para agendar: %q", follow)
	}
}
