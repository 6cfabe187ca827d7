package http_server

import (
	"context"
	"net/http"
	"time"

	"github.com/danthegoodman1/partman/auditlog"
	"github.com/danthegoodman1/partman/partcache"
	"github.com/danthegoodman1/partman/partitionid"
	"github.com/danthegoodman1/partman/syspart"
	"github.com/danthegoodman1/partman/utils"
	"github.com/rs/zerolog"
)

type (
	RetentionReqBody struct {
		Table string `validate:"required"`
		// KeepMonths is how many months to retain, counting the current
		// month as one
		KeepMonths int `validate:"required,min=1"`
		// DryRun only reports what would be dropped
		DryRun bool
	}

	RetentionStats struct {
		Cutoff            string
		PartitionsDropped []string
		DryRun            bool
		TimeMS            int64
	}
)

// RetentionHandler drops every partition of a table older than the
// retention cutoff.
func (s *HTTPServer) RetentionHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	var reqBody RetentionReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	cutoff := partitionid.CutoffMonths(time.Now(), reqBody.KeepMonths)

	parts, err := syspart.FetchActive(ctx, s.CH)
	if err != nil {
		return c.InternalError(err, "error listing active parts")
	}

	// Distinct expired partitions of the table, in listing order
	var expired []string
	for _, p := range parts {
		if p.Table != reqBody.Table || utils.ContainsString(expired, p.Partition) {
			continue
		}
		old, err := partitionid.Before(p.Partition, cutoff)
		if err != nil {
			// Tables partitioned by something other than month are not ours
			// to expire
			logger.Warn().Str("partition", p.Partition).Err(err).Msg("skipping non YYYYMM partition")
			continue
		}
		if old {
			expired = append(expired, p.Partition)
		}
	}

	stats := RetentionStats{
		Cutoff:            cutoff,
		PartitionsDropped: utils.ArrayOrEmpty(expired),
		DryRun:            reqBody.DryRun,
	}

	if reqBody.DryRun {
		stats.TimeMS = time.Since(start).Milliseconds()
		return c.JSON(http.StatusOK, stats)
	}

	for _, partition := range expired {
		sql, err := syspart.Run(ctx, s.CH, syspart.OpDrop, reqBody.Table, partition, "", nil)
		if err != nil {
			return c.InternalError(err, "error dropping partition "+partition)
		}

		_, err = auditlog.RecordOperation(ctx, auditlog.OpRecord{
			Operation: string(syspart.OpDrop),
			Database:  s.CH.Database(),
			Table:     reqBody.Table,
			Partition: partition,
			SQL:       sql,
			RequestID: c.RequestID,
		})
		if err != nil {
			return c.InternalError(err, "error recording drop")
		}
	}

	if len(expired) > 0 && s.Cache != nil {
		err = s.Cache.Invalidate(ctx, partcache.ListingKey(s.CH.Database(), true), partcache.ListingKey(s.CH.Database(), false))
		if err != nil {
			logger.Warn().Err(err).Msg("error invalidating part cache")
		}
	}

	stats.TimeMS = time.Since(start).Milliseconds()
	return c.JSON(http.StatusOK, stats)
}
