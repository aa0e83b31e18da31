// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pii-obfuscator/obfuscator/location"
)

// gcsObjects abstracts object reads and writes so tests can avoid real GCS calls.
type gcsObjects interface {
	NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, bucket, key string) io.WriteCloser
}

// realObjects wraps *gcs.Client to satisfy gcsObjects.
type realObjects struct{ c *gcs.Client }

func (r realObjects) NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	rd, err := r.c.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (r realObjects) NewWriter(ctx context.Context, bucket, key string) io.WriteCloser {
	return r.c.Bucket(bucket).Object(key).NewWriter(ctx)
}

// GCSConfig configures the Google Cloud Storage client. Without a credentials file, application default credentials
// are used.
type GCSConfig struct {
	CredentialsFile string
	Project         string
}

// GCS stores objects in Google Cloud Storage buckets: the location's container is the bucket.
type GCS struct {
	objects gcsObjects
	l       hclog.Logger
}

func NewGCS(ctx context.Context, cfg GCSConfig, l hclog.Logger) (*GCS, error) {
	opts := []option.ClientOption{}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.CredentialsFile))
	}
	if cfg.Project != "" {
		opts = append(opts, option.WithQuotaProject(cfg.Project))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	l = l.Named("gcs")
	l.Debug("GCS client created", "project", cfg.Project)
	return &GCS{objects: realObjects{client}, l: l}, nil
}

func (g *GCS) Fetch(ctx context.Context, loc location.Location) ([]byte, error) {
	r, err := g.objects.NewReader(ctx, loc.Container, loc.Key)
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: classifyGCS(err)}
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: classifyGCS(err)}
	}
	g.l.Debug("Object fetched", "bucket", loc.Container, "key", loc.Key, "bytes", len(data))
	return data, nil
}

// Store uploads data. The object only becomes visible once the writer is closed successfully.
func (g *GCS) Store(ctx context.Context, loc location.Location, data []byte) error {
	w := g.objects.NewWriter(ctx, loc.Container, loc.Key)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return StorageError{Op: "store", Location: loc, Err: classifyGCS(err)}
	}
	if err := w.Close(); err != nil {
		return StorageError{Op: "store", Location: loc, Err: classifyGCS(err)}
	}
	g.l.Debug("Object stored", "bucket", loc.Container, "key", loc.Key, "bytes", len(data))
	return nil
}

func classifyGCS(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return kind(ErrNotFound, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return kind(ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return kind(ErrAccess, err)
		}
	}
	return err
}
