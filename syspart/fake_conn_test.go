package syspart

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type (
	fakeConn struct {
		dbName  string
		queries []string
		execed  []string
		rows    *fakeRows
		execErr error
	}

	// fakeRows plays back typed values in Columns order
	fakeRows struct {
		data   [][]any
		idx    int
		closed bool
	}
)

func (fc *fakeConn) Query(_ context.Context, query string) (driver.Rows, error) {
	fc.queries = append(fc.queries, query)
	if fc.rows == nil {
		fc.rows = &fakeRows{}
	}
	return fc.rows, nil
}

func (fc *fakeConn) Exec(_ context.Context, query string) error {
	fc.execed = append(fc.execed, query)
	return fc.execErr
}

func (fc *fakeConn) Database() string {
	return fc.dbName
}

func (fr *fakeRows) Next() bool {
	if fr.idx >= len(fr.data) {
		return false
	}
	fr.idx++
	return true
}

func (fr *fakeRows) Scan(dest ...any) error {
	row := fr.data[fr.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d scan targets, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = row[i].(string)
		case *uint8:
			*v = row[i].(uint8)
		case *uint32:
			*v = row[i].(uint32)
		case *uint64:
			*v = row[i].(uint64)
		case *time.Time:
			*v = row[i].(time.Time)
		default:
			return fmt.Errorf("unexpected scan target %T at index %d", d, i)
		}
	}
	return nil
}

func (fr *fakeRows) ScanStruct(any) error {
	return fmt.Errorf("not implemented")
}

func (fr *fakeRows) ColumnTypes() []driver.ColumnType {
	return nil
}

func (fr *fakeRows) Totals(...any) error {
	return fmt.Errorf("not implemented")
}

func (fr *fakeRows) Columns() []string {
	return Columns
}

func (fr *fakeRows) Close() error {
	fr.closed = true
	return nil
}

func (fr *fakeRows) Err() error {
	return nil
}
