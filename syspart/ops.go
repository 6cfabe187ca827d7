package syspart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Operation is a partition lifecycle operation understood by
// ALTER TABLE ... PARTITION.
type Operation string

const (
	// OpDetach moves a partition to the detached directory and forgets it
	OpDetach Operation = "DETACH"
	// OpDrop deletes a partition
	OpDrop Operation = "DROP"
	// OpAttach adds a partition or part from the detached directory
	OpAttach Operation = "ATTACH"
	// OpFreeze creates a local backup of a partition
	OpFreeze Operation = "FREEZE"
	// OpFetch downloads a partition from another replica
	OpFetch Operation = "FETCH"
)

var (
	Operations = map[Operation]bool{
		OpDetach: true,
		OpDrop:   true,
		OpAttach: true,
		OpFreeze: true,
		OpFetch:  true,
	}

	ErrInvalidOperation  = errors.New("invalid partition operation")
	ErrMissingSourcePath = errors.New("missing source path for FETCH")
)

// BuildPartitionSQL renders the ALTER statement for a partition
// operation. fromPath is the coordination service path of the donor
// replica: required for FETCH, appended verbatim whenever supplied.
func BuildPartitionSQL(op Operation, database, table, partition, fromPath string) (string, error) {
	op = Operation(strings.ToUpper(string(op)))
	if !Operations[op] {
		return "", fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}
	if op == OpFetch && fromPath == "" {
		return "", ErrMissingSourcePath
	}
	sql := fmt.Sprintf("ALTER TABLE `%s`.`%s` %s PARTITION '%s'", database, table, op, partition)
	if fromPath != "" {
		sql += fmt.Sprintf(" FROM %s", fromPath)
	}
	return sql, nil
}

// Run builds and executes a partition operation against the connection's
// database, returning the SQL that was sent. settings are passed through
// to the server unmodified; a nil map sends none.
func Run(ctx context.Context, conn Conn, op Operation, table, partition, fromPath string, settings clickhouse.Settings) (string, error) {
	if conn == nil {
		return "", ErrNilConn
	}
	sql, err := BuildPartitionSQL(op, conn.Database(), table, partition, fromPath)
	if err != nil {
		return "", err
	}
	if settings != nil {
		ctx = clickhouse.Context(ctx, clickhouse.WithSettings(settings))
	}
	if err := conn.Exec(ctx, sql); err != nil {
		return "", fmt.Errorf("error in conn.Exec: %w", err)
	}
	return sql, nil
}

// Detach moves the part's partition to the detached directory and
// forgets it.
func (p *Part) Detach(ctx context.Context, conn Conn, settings clickhouse.Settings) (string, error) {
	return Run(ctx, conn, OpDetach, p.Table, p.Partition, "", settings)
}

// Drop deletes the part's partition.
func (p *Part) Drop(ctx context.Context, conn Conn, settings clickhouse.Settings) (string, error) {
	return Run(ctx, conn, OpDrop, p.Table, p.Partition, "", settings)
}

// Attach adds the part's partition back from the detached directory.
func (p *Part) Attach(ctx context.Context, conn Conn, settings clickhouse.Settings) (string, error) {
	return Run(ctx, conn, OpAttach, p.Table, p.Partition, "", settings)
}

// Freeze creates a local backup of the part's partition.
func (p *Part) Freeze(ctx context.Context, conn Conn, settings clickhouse.Settings) (string, error) {
	return Run(ctx, conn, OpFreeze, p.Table, p.Partition, "", settings)
}

// Fetch downloads the part's partition from another replica.
// zookeeperPath identifies the donor replica in the coordination service.
func (p *Part) Fetch(ctx context.Context, conn Conn, zookeeperPath string, settings clickhouse.Settings) (string, error) {
	return Run(ctx, conn, OpFetch, p.Table, p.Partition, zookeeperPath, settings)
}
