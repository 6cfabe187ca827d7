package http_server

import (
	"context"
	"net/http"
	"time"

	"github.com/danthegoodman1/partman/auditlog"
	"github.com/danthegoodman1/partman/partcache"
	"github.com/danthegoodman1/partman/syspart"
	"github.com/danthegoodman1/partman/utils"
	"github.com/rs/zerolog"
)

type (
	ListPartsResponse struct {
		Parts  []syspart.Part
		Cached bool
	}
)

func (s *HTTPServer) ListPartsHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*15)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	activeOnly := c.QueryParam("active") == "1"
	key := partcache.ListingKey(s.CH.Database(), activeOnly)

	if s.Cache != nil {
		parts, hit, err := s.Cache.GetParts(ctx, key)
		if err != nil {
			// The cache is best effort, fall through to clickhouse
			logger.Warn().Err(err).Msg("error reading part cache")
		} else if hit {
			return c.JSON(http.StatusOK, ListPartsResponse{Parts: utils.ArrayOrEmpty(parts), Cached: true})
		}
	}

	var (
		parts []syspart.Part
		err   error
	)
	if activeOnly {
		parts, err = syspart.FetchActive(ctx, s.CH)
	} else {
		parts, err = syspart.FetchAll(ctx, s.CH)
	}
	if err != nil {
		return c.InternalError(err, "error listing parts")
	}

	if s.Cache != nil {
		if err := s.Cache.SetParts(ctx, key, parts); err != nil {
			logger.Warn().Err(err).Msg("error writing part cache")
		}
	}

	return c.JSON(http.StatusOK, ListPartsResponse{Parts: utils.ArrayOrEmpty(parts)})
}

func (s *HTTPServer) ListOpsHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*15)
	defer cancel()

	recs, err := auditlog.ListRecent(ctx, 100)
	if err != nil {
		return c.InternalError(err, "error listing operations")
	}

	return c.JSON(http.StatusOK, recs)
}
