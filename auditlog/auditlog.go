package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/danthegoodman1/partman/crdb"
	"github.com/danthegoodman1/partman/utils"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var ErrNoPool = utils.PermError("audit log database not connected")

type OpRecord struct {
	ID        string
	Operation string
	Database  string
	Table     string
	Partition string
	SQL       string
	RequestID string
	CreatedAt time.Time
}

// RecordOperation writes one executed partition operation to the audit
// trail. The id and timestamp are assigned here.
func RecordOperation(ctx context.Context, rec OpRecord) (string, error) {
	if crdb.PGPool == nil {
		return "", ErrNoPool
	}
	rec.ID = utils.GenRandomID("op_")
	rec.CreatedAt = time.Now()
	err := crdbpgx.ExecuteTx(ctx, crdb.PGPool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO partition_ops (id, operation, db_name, table_name, partition_id, sql_text, request_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, rec.Operation, rec.Database, rec.Table, rec.Partition, rec.SQL, rec.RequestID, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("error in tx.Exec: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error in crdbpgx.ExecuteTx: %w", err)
	}
	return rec.ID, nil
}

// ListRecent returns the newest audit records first.
func ListRecent(ctx context.Context, limit int64) ([]OpRecord, error) {
	if crdb.PGPool == nil {
		return nil, ErrNoPool
	}
	recs := make([]OpRecord, 0)
	err := utils.ReliableExec(ctx, crdb.PGPool, time.Second*15, func(ctx context.Context, conn *pgxpool.Conn) error {
		// Drop rows from a failed attempt before retrying
		recs = recs[:0]
		rows, err := conn.Query(ctx, `SELECT id, operation, db_name, table_name, partition_id, sql_text, request_id, created_at
			FROM partition_ops ORDER BY created_at DESC LIMIT $1`, limit)
		if err != nil {
			return fmt.Errorf("error in conn.Query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var rec OpRecord
			err = rows.Scan(&rec.ID, &rec.Operation, &rec.Database, &rec.Table, &rec.Partition, &rec.SQL, &rec.RequestID, &rec.CreatedAt)
			if err != nil {
				return fmt.Errorf("error in rows.Scan: %w", err)
			}
			recs = append(recs, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
