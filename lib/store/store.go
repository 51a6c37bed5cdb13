// Package store defines the interface for database implementations to the api and resolver microservices.
package store

import (
	"context"
	"errors"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// DB defines required methods for the api and resolver services.
type DB interface {
	// methods for the api service
	GetRecords(ctx context.Context, provider string, addrs []string) ([]names.Domain, error)
	DeleteRecords(ctx context.Context, provider string, addrs []string) (int64, error)
	// methods for the resolver service
	SaveRecords(ctx context.Context, provider string, recs []names.Domain) error
	LoadPending(ctx context.Context, provider string) (Pending, error)
	SavePending(ctx context.Context, provider string, p Pending) error
}

// Errors returned
var (
	ErrDataNotFound = errors.New("data was not found in store")
	ErrUnknownDB    = errors.New("unknown database type")
)
