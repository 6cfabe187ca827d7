package http_server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/danthegoodman1/partman/auditlog"
	"github.com/danthegoodman1/partman/backup"
	"github.com/danthegoodman1/partman/partcache"
	"github.com/danthegoodman1/partman/syspart"
	"github.com/rs/zerolog"
)

type (
	PartitionOpReqBody struct {
		Table     string `validate:"required"`
		Partition string `validate:"required"`
		// FromPath is the coordination service path of the donor replica,
		// only meaningful (and required) for fetch
		FromPath string
		// Settings are passed through to the server unmodified
		Settings map[string]any
	}

	PartitionOpStats struct {
		SQL      string
		AuditID  string
		BackupID *string
		TimeMS   int64
	}
)

// PartitionOpHandler executes one partition lifecycle operation
// (detach, drop, attach, freeze, fetch) named in the path.
func (s *HTTPServer) PartitionOpHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	op := syspart.Operation(strings.ToUpper(c.Param("operation")))
	if !syspart.Operations[op] {
		return c.String(http.StatusBadRequest, "unknown partition operation "+c.Param("operation"))
	}

	var reqBody PartitionOpReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	start := time.Now()

	sql, err := syspart.Run(ctx, s.CH, op, reqBody.Table, reqBody.Partition, reqBody.FromPath, clickhouse.Settings(reqBody.Settings))
	if errors.Is(err, syspart.ErrMissingSourcePath) {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error running partition operation")
	}

	// Listings are stale now
	if s.Cache != nil {
		err = s.Cache.Invalidate(ctx, partcache.ListingKey(s.CH.Database(), true), partcache.ListingKey(s.CH.Database(), false))
		if err != nil {
			logger.Warn().Err(err).Msg("error invalidating part cache")
		}
	}

	stats := PartitionOpStats{SQL: sql}

	if op == syspart.OpFreeze {
		manifest, err := backup.UploadFreezeManifest(ctx, s.CH, reqBody.Table, reqBody.Partition)
		if err != nil {
			return c.InternalError(err, "error uploading freeze manifest")
		}
		stats.BackupID = &manifest.BackupID
	}

	auditID, err := auditlog.RecordOperation(ctx, auditlog.OpRecord{
		Operation: string(op),
		Database:  s.CH.Database(),
		Table:     reqBody.Table,
		Partition: reqBody.Partition,
		SQL:       sql,
		RequestID: c.RequestID,
	})
	if err != nil {
		return c.InternalError(err, "error recording operation")
	}
	stats.AuditID = auditID

	stats.TimeMS = time.Since(start).Milliseconds()

	return c.JSON(http.StatusOK, stats)
}
