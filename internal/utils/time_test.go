package utils

import (
	"testing"
	"time"
)

func TestNextResetTime(t *testing.T) {
	loc := time.UTC

	t.Run("before today's reset hour targets today", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 3, 59, 0, 0, loc)
		got := NextResetTime(now, 4)
		want := time.Date(2026, 3, 10, 4, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})

	t.Run("after today's reset hour targets tomorrow", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 4, 1, 0, 0, loc)
		got := NextResetTime(now, 4)
		want := time.Date(2026, 3, 11, 4, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})

	t.Run("exactly at reset hour targets tomorrow", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 4, 0, 0, 0, loc)
		got := NextResetTime(now, 4)
		want := time.Date(2026, 3, 11, 4, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})

	t.Run("month boundary", func(t *testing.T) {
		now := time.Date(2026, 1, 31, 23, 30, 0, 0, loc)
		got := NextResetTime(now, 4)
		want := time.Date(2026, 2, 1, 4, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})

	t.Run("year boundary", func(t *testing.T) {
		now := time.Date(2026, 12, 31, 23, 30, 0, 0, loc)
		got := NextResetTime(now, 4)
		want := time.Date(2027, 1, 1, 4, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})

	t.Run("midnight reset hour", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)
		got := NextResetTime(now, 0)
		want := time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextResetTime() = %v, want %v", got, want)
		}
	})
}

func TestSameDay(t *testing.T) {
	loc := time.UTC

	a := time.Date(2026, 3, 10, 1, 0, 0, 0, loc)
	b := time.Date(2026, 3, 10, 23, 59, 0, 0, loc)
	if !SameDay(a, b) {
		t.Error("SameDay() = false, want true for same calendar day")
	}

	c := time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
	if SameDay(a, c) {
		t.Error("SameDay() = true, want false for different days")
	}

	// A timestamp is compared in the second argument's location.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	utcLate := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)   // Mar 9, 9pm in NY
	nyNow := time.Date(2026, 3, 10, 12, 0, 0, 0, ny)
	if SameDay(utcLate, nyNow) {
		t.Error("SameDay() = true, want false across timezone day boundary")
	}
}

func TestValidateTimeFormat(t *testing.T) {
	valid := []string{"00:00", "04:00", "23:59"}
	for _, v := range valid {
		if !ValidateTimeFormat(v) {
			t.Errorf("ValidateTimeFormat(%q) = false, want true", v)
		}
	}

	invalid := []string{"24:00", "4:0:0", "noon", ""}
	for _, v := range invalid {
		if ValidateTimeFormat(v) {
			t.Errorf("ValidateTimeFormat(%q) = true, want false", v)
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("Local") {
		t.Error("ValidateTimezone(Local) = false, want true")
	}
	if !ValidateTimezone("") {
		t.Error("ValidateTimezone(empty) = false, want true")
	}
	if ValidateTimezone("Not/AZone") {
		t.Error("ValidateTimezone(Not/AZone) = true, want false")
	}
}
