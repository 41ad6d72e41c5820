// Package testdb hands out throwaway Postgres databases for integration tests.
package testdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DSNEnv names the variable holding a DSN of a server the tests may create databases on.
const DSNEnv = "TEST_DATABASE_DSN"

var ErrNoServer = errors.New(DSNEnv + " is not set")

type TestDBInstance struct {
	DSN    string
	name   string
	server string
}

// NewTestDBInstance creates an empty database with a unique name. It returns ErrNoServer
// when no test server is configured.
func NewTestDBInstance() (*TestDBInstance, error) {
	server := os.Getenv(DSNEnv)
	if server == "" {
		return nil, ErrNoServer
	}

	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("test dsn: %w", err)
	}
	name := "storefront_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, server)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return nil, fmt.Errorf("create database %s: %w", name, err)
	}

	u.Path = "/" + name
	return &TestDBInstance{DSN: u.String(), name: name, server: server}, nil
}

// Down drops the database, closing any connection still open to it.
func (tdb *TestDBInstance) Down() error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, tdb.server)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{tdb.name}.Sanitize()+" WITH (FORCE)")
	return err
}
