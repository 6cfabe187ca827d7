package syspart

import (
	"context"
	"errors"
	"testing"
)

func TestBuildPartitionSQL(t *testing.T) {
	for _, op := range []Operation{OpDetach, OpDrop, OpAttach, OpFreeze} {
		sql, err := BuildPartitionSQL(op, "db", "tbl", "part", "")
		if err != nil {
			t.Fatal(err)
		}

		expected := "ALTER TABLE `db`.`tbl` " + string(op) + " PARTITION 'part'"
		if sql != expected {
			t.Fatalf("expected %q, got %q", expected, sql)
		}
	}
}

func TestBuildPartitionSQLFreezeExample(t *testing.T) {
	sql, err := BuildPartitionSQL("freeze", "default", "events", "201901", "")
	if err != nil {
		t.Fatal(err)
	}

	if sql != "ALTER TABLE `default`.`events` FREEZE PARTITION '201901'" {
		t.Fatalf("unexpected sql %q", sql)
	}
}

func TestBuildPartitionSQLInvalidOperation(t *testing.T) {
	sql, err := BuildPartitionSQL("OPTIMIZE", "db", "tbl", "part", "")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if sql != "" {
		t.Fatalf("expected no sql, got %q", sql)
	}
}

func TestBuildPartitionSQLFetch(t *testing.T) {
	_, err := BuildPartitionSQL(OpFetch, "db", "tbl", "part", "")
	if !errors.Is(err, ErrMissingSourcePath) {
		t.Fatalf("expected ErrMissingSourcePath, got %v", err)
	}

	sql, err := BuildPartitionSQL(OpFetch, "db", "tbl", "part", "/clickhouse/tables/01/tbl")
	if err != nil {
		t.Fatal(err)
	}

	expected := "ALTER TABLE `db`.`tbl` FETCH PARTITION 'part' FROM /clickhouse/tables/01/tbl"
	if sql != expected {
		t.Fatalf("expected %q, got %q", expected, sql)
	}
}

func TestRunExecutesBuiltSQL(t *testing.T) {
	fc := &fakeConn{dbName: "default"}
	p := Part{Table: "events", Partition: "201901"}

	sql, err := p.Detach(context.Background(), fc, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(fc.execed) != 1 {
		t.Fatalf("expected 1 exec, got %d", len(fc.execed))
	}
	if fc.execed[0] != sql {
		t.Fatalf("executed %q but returned %q", fc.execed[0], sql)
	}
	if sql != "ALTER TABLE `default`.`events` DETACH PARTITION '201901'" {
		t.Fatalf("unexpected sql %q", sql)
	}
}

func TestRunInvalidOpSendsNothing(t *testing.T) {
	fc := &fakeConn{dbName: "default"}

	_, err := Run(context.Background(), fc, "TRUNCATE", "events", "201901", "", nil)
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if len(fc.execed) != 0 {
		t.Fatalf("expected no execs, got %d", len(fc.execed))
	}
}

func TestRunNilConn(t *testing.T) {
	_, err := Run(context.Background(), nil, OpDrop, "events", "201901", "", nil)
	if !errors.Is(err, ErrNilConn) {
		t.Fatalf("expected ErrNilConn, got %v", err)
	}
}
