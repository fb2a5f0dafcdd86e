package handlers

import (
	"testing"
	"time"
)

func TestParsePeriodDefaultsToLast30Days(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, loc)

	start, end, err := parsePeriod("", "", now, loc)
	if err != nil {
		t.Fatal(err)
	}

	wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("parsePeriod = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestParsePeriodExplicitRangeIsInclusive(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, loc)

	start, end, err := parsePeriod("2026-07-01", "2026-07-31", now, loc)
	if err != nil {
		t.Fatal(err)
	}

	if !start.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("start = %v", start)
	}

	// "to" é inclusivo: o fim exclusivo cai no dia seguinte
	if !end.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("end = %v", end)
	}
}

func TestParsePeriodRejectsBadDates(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, loc)

	if _, _, err := parsePeriod("31/07/2026", "", now, loc); err == nil {
		t.Error("from inválido aceito")
	}
	if _, _, err := parsePeriod("", "ontem", now, loc); err == nil {
		t.Error("to inválido aceito")
	}
}
