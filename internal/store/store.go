// Package store persists baseline documents to a local file, an S3-compatible
// bucket, or a PostgreSQL table, chosen by the form of the location string.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyulab/llp/internal/config"
)

// ErrNotFound is returned by Read when no baseline exists at the location.
var ErrNotFound = errors.New("baseline not found")

// Location kinds.
const (
	KindFile     = "file"
	KindS3       = "s3"
	KindPostgres = "postgres"
)

// Backend reads and writes baseline documents by key.
type Backend interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Close()
}

// Location is a parsed baseline location.
type Location struct {
	Kind   string
	Bucket string // s3 only
	Key    string // file path, object key, or baseline name
}

// ParseLocation classifies a baseline location:
//
//	s3://bucket/key   object storage
//	pg:name           PostgreSQL row
//	anything else     local file path
func ParseLocation(loc string) (Location, error) {
	switch {
	case loc == "":
		return Location{}, errors.New("empty baseline location")
	case strings.HasPrefix(loc, "s3://"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(loc, "s3://"), "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", loc)
		}
		return Location{Kind: KindS3, Bucket: bucket, Key: key}, nil
	case strings.HasPrefix(loc, "pg:"):
		name := strings.TrimPrefix(loc, "pg:")
		if name == "" {
			return Location{}, fmt.Errorf("invalid postgres location %q: want pg:<name>", loc)
		}
		return Location{Kind: KindPostgres, Key: name}, nil
	default:
		return Location{Kind: KindFile, Key: loc}, nil
	}
}

// Open parses loc and connects the matching backend. The returned key is
// what Read and Write expect for that location.
func Open(ctx context.Context, loc string, cfg config.BaselineConfig) (Backend, string, error) {
	l, err := ParseLocation(loc)
	if err != nil {
		return nil, "", err
	}
	switch l.Kind {
	case KindS3:
		b, err := NewS3(cfg.S3, l.Bucket)
		if err != nil {
			return nil, "", fmt.Errorf("s3 store: %w", err)
		}
		return b, l.Key, nil
	case KindPostgres:
		b, err := NewPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, "", fmt.Errorf("postgres store: %w", err)
		}
		return b, l.Key, nil
	default:
		return FileBackend{}, l.Key, nil
	}
}
