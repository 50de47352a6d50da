package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Username        string
	Password        string
	Database        string
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

// clientOptions accepts either a clickhouse:// URL or a comma separated list
// of host:port addresses.
func clientOptions(opts Options) (*clickhouse.Options, error) {
	if strings.Contains(opts.DSN, "://") {
		parsed, err := clickhouse.ParseDSN(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse clickhouse dsn: %w", err)
		}
		applyPool(parsed, opts)
		return parsed, nil
	}

	host := strings.Split(opts.DSN, "?")[0]
	if host == "" {
		return nil, fmt.Errorf("clickhouse dsn is empty")
	}

	co := &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     strings.Split(host, ","),
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: time.Second * 30,
	}
	applyPool(co, opts)
	return co, nil
}

func applyPool(co *clickhouse.Options, opts Options) {
	if opts.MaxOpenConns > 0 {
		co.MaxOpenConns = opts.MaxOpenConns
	}
	if opts.MaxIdleConns > 0 {
		co.MaxIdleConns = opts.MaxIdleConns
	}
	if opts.ConnMaxLifetime > 0 {
		co.ConnMaxLifetime = opts.ConnMaxLifetime
	}
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	co, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(co)
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	logger.Info("connected to clickhouse",
		zap.Strings("addr", co.Addr),
		zap.String("database", co.Auth.Database))

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
