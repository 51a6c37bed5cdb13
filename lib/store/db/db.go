// Package db implements the opening and graceful closing of database connections.
package db

import (
	"fmt"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store/mongo"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store/postgres"
)

const (
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
)

// New returns a new database connection according to the options (database type).
func New(options, connection string) (store.DB, error) {
	switch options {
	case MONGODB:
		return mongo.New(connection)
	case POSTGRES:
		return postgres.New(connection)
	}

	return nil, fmt.Errorf("%w: %q", store.ErrUnknownDB, options)
}

// Close gracefully closes the database connection.
func Close(options string, dh store.DB) error {
	switch options {
	case MONGODB:
		return dh.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return dh.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}
