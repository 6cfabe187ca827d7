package partitionid

import (
	"errors"
	"testing"
	"time"
)

func TestFromTime(t *testing.T) {
	id := FromTime(time.Date(2019, 1, 24, 15, 0, 0, 0, time.UTC))
	if id != "201901" {
		t.Fatalf("expected 201901, got %s", id)
	}

	id = FromTime(time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC))
	if id != "202212" {
		t.Fatalf("expected 202212, got %s", id)
	}
}

func TestParse(t *testing.T) {
	year, month, err := Parse("201901")
	if err != nil {
		t.Fatal(err)
	}
	if year != 2019 || month != time.January {
		t.Fatalf("expected 2019 January, got %d %s", year, month)
	}

	_, _, err = Parse("2019")
	if !errors.Is(err, ErrBadFormat) {
		t.Fatalf("expected ErrBadFormat, got %v", err)
	}

	_, _, err = Parse("2019ab")
	if !errors.Is(err, ErrBadFormat) {
		t.Fatalf("expected ErrBadFormat, got %v", err)
	}

	_, _, err = Parse("201913")
	if !errors.Is(err, ErrBadMonth) {
		t.Fatalf("expected ErrBadMonth, got %v", err)
	}
}

func TestBefore(t *testing.T) {
	before, err := Before("201812", "201901")
	if err != nil {
		t.Fatal(err)
	}
	if !before {
		t.Fatal("201812 should be before 201901")
	}

	before, err = Before("201901", "201901")
	if err != nil {
		t.Fatal(err)
	}
	if before {
		t.Fatal("201901 is not before itself")
	}

	_, err = Before("garbage", "201901")
	if err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestCutoffMonths(t *testing.T) {
	now := time.Date(2023, 3, 31, 12, 0, 0, 0, time.UTC)

	if cutoff := CutoffMonths(now, 1); cutoff != "202303" {
		t.Fatalf("expected 202303, got %s", cutoff)
	}
	if cutoff := CutoffMonths(now, 3); cutoff != "202301" {
		t.Fatalf("expected 202301, got %s", cutoff)
	}
	// Crosses the year boundary
	if cutoff := CutoffMonths(now, 6); cutoff != "202210" {
		t.Fatalf("expected 202210, got %s", cutoff)
	}
}
