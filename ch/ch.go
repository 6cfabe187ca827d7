package ch

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/UltimateTournament/backoff/v4"
	"github.com/danthegoodman1/partman/gologger"
	"github.com/danthegoodman1/partman/utils"
)

var (
	Conn *CHConn

	logger = gologger.NewLogger()
)

// CHConn binds a native protocol connection pool to the database it was
// opened against, which partition operations and system table queries
// scope themselves to.
type CHConn struct {
	conn   driver.Conn
	dbName string
}

func ConnectToCH() error {
	logger.Debug().Msg("connecting to clickhouse...")
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{utils.CH_ADDR},
		Auth: clickhouse.Auth{
			Database: utils.CH_DATABASE,
			Username: utils.CH_USERNAME,
			Password: utils.CH_PASSWORD,
		},
		DialTimeout:     time.Second * 3,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute * 30,
	})
	if err != nil {
		return fmt.Errorf("error in clickhouse.Open: %w", err)
	}

	// The server may still be coming up
	err = backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		return conn.Ping(pingCtx)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		return fmt.Errorf("error pinging clickhouse: %w", err)
	}

	Conn = &CHConn{
		conn:   conn,
		dbName: utils.CH_DATABASE,
	}
	logger.Debug().Msg("connected to clickhouse")
	return nil
}

func (c *CHConn) Query(ctx context.Context, query string) (driver.Rows, error) {
	return c.conn.Query(ctx, query)
}

func (c *CHConn) Exec(ctx context.Context, query string) error {
	return c.conn.Exec(ctx, query)
}

// Database is the name of the database this connection is bound to.
func (c *CHConn) Database() string {
	return c.dbName
}

func (c *CHConn) Close() error {
	return c.conn.Close()
}
