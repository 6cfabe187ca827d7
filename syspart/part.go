package syspart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// TableName is the ClickHouse introspection table with one row per
// on-disk data part of MergeTree family tables.
const TableName = "system.parts"

type (
	// Conn is the subset of a clickhouse connection that system table
	// queries and partition operations need. Production code passes
	// *ch.CHConn, tests inject a fake.
	Conn interface {
		Query(ctx context.Context, query string) (driver.Rows, error)
		Exec(ctx context.Context, query string) error
		// Database is the name of the database the connection is bound to
		Database() string
	}

	// Part is a read-only snapshot of one system.parts row. Parts are only
	// ever produced by scanning a query result, never built by hand: the
	// server owns the part lifecycle.
	Part struct {
		Database string
		Table    string
		// Engine name, without parameters
		Engine string
		// Partition the part belongs to, format YYYYMM
		Partition string
		Name      string
		// Whether the part belongs to replicated data
		Replicated bool
		// Inactive parts remain after merging until cleanup
		Active bool
		// Multiply by the index granularity (usually 8192) for the
		// approximate row count
		Marks uint64
		// Compressed size
		Bytes uint64
		// Usually the part's creation time
		ModificationTime time.Time
		// Only meaningful for inactive parts
		RemoveTime time.Time
		// Greater than 2 means the part is used by queries or merges
		Refcount uint32
	}
)

// Columns is the declared schema of Part, in struct field order. Queries
// select exactly these so scan order always lines up with the fields.
var Columns = []string{
	"database",
	"table",
	"engine",
	"partition",
	"name",
	"replicated",
	"active",
	"marks",
	"bytes",
	"modification_time",
	"remove_time",
	"refcount",
}

var ErrNilConn = errors.New("nil clickhouse connection")

// FetchActive returns all active parts in the connection's database.
func FetchActive(ctx context.Context, conn Conn) ([]Part, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	return selectParts(ctx, conn, fmt.Sprintf("SELECT %s FROM %s WHERE active AND database='%s'", strings.Join(Columns, ","), TableName, conn.Database()))
}

// FetchAll returns every part in the connection's database, including
// inactive parts awaiting cleanup.
func FetchAll(ctx context.Context, conn Conn) ([]Part, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	return selectParts(ctx, conn, fmt.Sprintf("SELECT %s FROM %s WHERE database='%s'", strings.Join(Columns, ","), TableName, conn.Database()))
}

func selectParts(ctx context.Context, conn Conn, query string) ([]Part, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error in conn.Query: %w", err)
	}
	defer rows.Close()

	parts := make([]Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning part row: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading part rows: %w", err)
	}
	return parts, nil
}

// scanPart reads one row in Columns order. The replicated and active
// flags come over the wire as UInt8 0/1.
func scanPart(rows driver.Rows) (Part, error) {
	var (
		p          Part
		replicated uint8
		active     uint8
	)
	err := rows.Scan(
		&p.Database,
		&p.Table,
		&p.Engine,
		&p.Partition,
		&p.Name,
		&replicated,
		&active,
		&p.Marks,
		&p.Bytes,
		&p.ModificationTime,
		&p.RemoveTime,
		&p.Refcount,
	)
	if err != nil {
		return p, fmt.Errorf("error in rows.Scan: %w", err)
	}
	p.Replicated = replicated != 0
	p.Active = active != 0
	return p, nil
}
