// Package influxdb writes address-space frames to InfluxDB as time series.
package influxdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	api "github.com/influxdata/influxdb-client-go/v2/api"
)

// Config maps the connection details required to reach InfluxDB.
type Config struct {
	URL     string
	Token   string
	Org     string
	Bucket  string
	Timeout time.Duration
}

// Client wraps the InfluxDB client bound to one org and bucket.
type Client struct {
	cfg    Config
	client influxdb2.Client
}

var errPingFailed = errors.New("influxdb ping failed")

// New connects and pings InfluxDB before returning.
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts := influxdb2.DefaultOptions()
	if cfg.Timeout > 0 {
		opts.SetHTTPRequestTimeout(uint(cfg.Timeout / time.Second))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctxPing := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctxPing, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ok, err := client.Ping(ctxPing)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping InfluxDB: %w", err)
	}
	if !ok {
		client.Close()
		return nil, errPingFailed
	}

	return &Client{cfg: cfg, client: client}, nil
}

// WriteAPI returns the blocking write API bound to the configured org and bucket.
func (c *Client) WriteAPI() api.WriteAPIBlocking {
	return c.client.WriteAPIBlocking(c.cfg.Org, c.cfg.Bucket)
}

func (c *Client) Close() {
	c.client.Close()
}
