package model

import "testing"

func TestShiftHours(t *testing.T) {
	day := Shift{Start: "06:00", End: "18:00"}
	if h, err := day.StartHour(); err != nil || h != 6 {
		t.Fatalf("start hour: %d %v", h, err)
	}
	if day.Overnight() {
		t.Fatal("day shift reported overnight")
	}
	if d := day.DurationHours(); d != 12 {
		t.Fatalf("expected 12 got %d", d)
	}

	night := Shift{Start: "18:00", End: "06:00"}
	if !night.Overnight() {
		t.Fatal("night shift not overnight")
	}
	if d := night.DurationHours(); d != 12 {
		t.Fatalf("expected 12 got %d", d)
	}

	if _, err := (Shift{Start: "25:00"}).StartHour(); err == nil {
		t.Fatal("expected range error")
	}
	if _, err := (Shift{Start: "ab"}).StartHour(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseTaskType(t *testing.T) {
	cases := map[string]TaskType{"activity": TaskActivity, "task": TaskFixed, "Fixed": TaskFixed, "": TaskFixed}
	for in, want := range cases {
		got, err := ParseTaskType(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err %v", in, got, err)
		}
	}
	if _, err := ParseTaskType("other"); err == nil {
		t.Fatal("expected error")
	}
}

func TestShiftInfo(t *testing.T) {
	info := Shift{Code: "N", Name: "Night", Start: "22:00", End: "06:00"}.Info()
	if !info.Overnight || info.Hours != 8 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info := (Shift{Code: "X", Start: "bad"}).Info(); info.Overnight || info.Hours != 0 {
		t.Fatalf("unparsable shift should report no hours, got %+v", info)
	}
}
