// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-rootcerts"

	"github.com/pii-obfuscator/obfuscator/location"
)

// s3API is the subset of the S3 client used by S3, allowing injection of a fake client in tests.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 client. Credentials always come from the default AWS chain.
type S3Config struct {
	// Region overrides the region from the environment or shared config.
	Region string
	// Endpoint is a custom S3 endpoint, e.g. MinIO or LocalStack. Path-style addressing is used with it.
	Endpoint string
	// CAFile and CAPath add trusted CA certificates for endpoints with private certificates.
	CAFile string
	CAPath string
}

// S3 stores objects in Amazon S3 buckets: the location's container is the bucket.
type S3 struct {
	client s3API
	l      hclog.Logger
}

// NewS3 loads the default AWS configuration and creates a client that makes a single attempt per request.
func NewS3(ctx context.Context, cfg S3Config, l hclog.Logger) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.CAFile != "" || cfg.CAPath != "" {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		err := rootcerts.ConfigureTLS(tlsConfig, &rootcerts.Config{CAFile: cfg.CAFile, CAPath: cfg.CAPath})
		if err != nil {
			return nil, fmt.Errorf("failed to load S3 CA certificates: %w", err)
		}
		httpClient := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
			tr.TLSClientConfig = tlsConfig
		})
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	l = l.Named("s3")
	l.Debug("S3 client created", "region", awsCfg.Region, "endpoint", cfg.Endpoint)
	return &S3{client: client, l: l}, nil
}

func (s *S3) Fetch(ctx context.Context, loc location.Location) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Container),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: classifyS3(err)}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, StorageError{Op: "fetch", Location: loc, Err: err}
	}
	s.l.Debug("Object fetched", "bucket", loc.Container, "key", loc.Key, "bytes", len(data))
	return data, nil
}

func (s *S3) Store(ctx context.Context, loc location.Location, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Container),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return StorageError{Op: "store", Location: loc, Err: classifyS3(err)}
	}
	s.l.Debug("Object stored", "bucket", loc.Container, "key", loc.Key, "bytes", len(data))
	return nil
}

func classifyS3(err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return kind(ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return kind(ErrNotFound, err)
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return kind(ErrAccess, err)
		}
	}
	return err
}
