package syspart

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFetchActiveQuery(t *testing.T) {
	fc := &fakeConn{dbName: "default"}

	_, err := FetchActive(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}

	expected := "SELECT database,table,engine,partition,name,replicated,active,marks,bytes,modification_time,remove_time,refcount FROM system.parts WHERE active AND database='default'"
	if len(fc.queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(fc.queries))
	}
	if fc.queries[0] != expected {
		t.Fatalf("expected %q, got %q", expected, fc.queries[0])
	}
}

func TestFetchAllQuery(t *testing.T) {
	fc := &fakeConn{dbName: "analytics"}

	_, err := FetchAll(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}

	expected := "SELECT database,table,engine,partition,name,replicated,active,marks,bytes,modification_time,remove_time,refcount FROM system.parts WHERE database='analytics'"
	if fc.queries[0] != expected {
		t.Fatalf("expected %q, got %q", expected, fc.queries[0])
	}
}

func TestScanRoundTrip(t *testing.T) {
	modTime := time.Date(2019, 1, 15, 12, 30, 0, 0, time.UTC)
	removeTime := time.Date(2019, 1, 16, 8, 0, 0, 0, time.UTC)

	fc := &fakeConn{
		dbName: "default",
		rows: &fakeRows{data: [][]any{
			{"default", "events", "MergeTree", "201901", "201901_1_8_2", uint8(0), uint8(1), uint64(128), uint64(1048576), modTime, removeTime, uint32(1)},
			{"default", "events", "MergeTree", "201812", "201812_1_4_1", uint8(1), uint8(0), uint64(64), uint64(524288), modTime, removeTime, uint32(3)},
		}},
	}

	parts, err := FetchAll(context.Background(), fc)
	if err != nil {
		t.Fatal(err)
	}

	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	p := parts[0]
	if p.Database != "default" || p.Table != "events" || p.Engine != "MergeTree" {
		t.Fatalf("mismatched identity fields: %+v", p)
	}
	if p.Partition != "201901" || p.Name != "201901_1_8_2" {
		t.Fatalf("mismatched partition fields: %+v", p)
	}
	if p.Replicated || !p.Active {
		t.Fatalf("expected replicated=false active=true, got %+v", p)
	}
	if p.Marks != 128 || p.Bytes != 1048576 || p.Refcount != 1 {
		t.Fatalf("mismatched counters: %+v", p)
	}
	if !p.ModificationTime.Equal(modTime) || !p.RemoveTime.Equal(removeTime) {
		t.Fatalf("mismatched timestamps: %+v", p)
	}

	if !parts[1].Replicated || parts[1].Active {
		t.Fatalf("expected replicated=true active=false, got %+v", parts[1])
	}

	if !fc.rows.closed {
		t.Fatal("rows were not closed")
	}
}

func TestFetchNilConn(t *testing.T) {
	if _, err := FetchActive(context.Background(), nil); !errors.Is(err, ErrNilConn) {
		t.Fatalf("expected ErrNilConn, got %v", err)
	}
	if _, err := FetchAll(context.Background(), nil); !errors.Is(err, ErrNilConn) {
		t.Fatalf("expected ErrNilConn, got %v", err)
	}
}
