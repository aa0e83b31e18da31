// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package storage fetches and stores whole objects. Each backend makes exactly one attempt per call.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/pii-obfuscator/obfuscator/location"
)

// Gateway reads and writes whole objects.
type Gateway interface {
	Fetch(ctx context.Context, loc location.Location) ([]byte, error)
	Store(ctx context.Context, loc location.Location, data []byte) error
}

var (
	// ErrNotFound is matched by errors.Is when the object or its container does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrAccess is matched by errors.Is when the caller may not read or write the object.
	ErrAccess = errors.New("access denied")
	// ErrUnsupportedScheme is matched by errors.Is when no gateway serves a location's scheme.
	ErrUnsupportedScheme = errors.New("unsupported location scheme")
)

// StorageError is returned by every Gateway in this package.
type StorageError struct {
	Op       string
	Location location.Location
	Err      error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("unable to %s object, location=%s, err=%s", e.Op, e.Location, e.Err.Error())
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// kind wraps err so that errors.Is matches both sentinel and err.
func kind(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Config holds the settings of every remote backend.
type Config struct {
	S3  S3Config
	GCS GCSConfig
}

// Mux routes each location to the Gateway registered for its scheme.
type Mux map[string]Gateway

func (m Mux) route(op string, loc location.Location) (Gateway, error) {
	g, ok := m[loc.Scheme]
	if !ok {
		return nil, StorageError{Op: op, Location: loc, Err: fmt.Errorf("%w %q", ErrUnsupportedScheme, loc.Scheme)}
	}
	return g, nil
}

func (m Mux) Fetch(ctx context.Context, loc location.Location) ([]byte, error) {
	g, err := m.route("fetch", loc)
	if err != nil {
		return nil, err
	}
	return g.Fetch(ctx, loc)
}

func (m Mux) Store(ctx context.Context, loc location.Location, data []byte) error {
	g, err := m.route("store", loc)
	if err != nil {
		return err
	}
	return g.Store(ctx, loc, data)
}

// New builds a Mux holding a gateway for each of schemes. Plain paths (no scheme) and file:// are served by the local
// filesystem, s3:// by S3 and gs:// by Google Cloud Storage. Remote clients are only created for schemes that are
// asked for, so a local run never needs cloud credentials. Unknown schemes are skipped; the Mux rejects them when used.
func New(ctx context.Context, cfg Config, l hclog.Logger, schemes ...string) (Mux, error) {
	m := Mux{}
	for _, scheme := range schemes {
		if _, ok := m[scheme]; ok {
			continue
		}
		switch scheme {
		case "", "file":
			m[scheme] = Local{}
		case "s3":
			s, err := NewS3(ctx, cfg.S3, l)
			if err != nil {
				return nil, err
			}
			m[scheme] = s
		case "gs":
			g, err := NewGCS(ctx, cfg.GCS, l)
			if err != nil {
				return nil, err
			}
			m[scheme] = g
		default:
			l.Warn("no storage backend for scheme", "scheme", scheme)
		}
	}
	return m, nil
}
