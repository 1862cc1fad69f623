// Package objectstore implements the storage client (C1): ensuring the
// target bucket exists, uploading finished documents, and downloading
// template assets, against any S3-compatible endpoint.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docworker/internal/config"
	"github.com/ternarybob/docworker/internal/retry"
)

// documentKeyPrefix is the object key namespace for finished documents,
// matching the source's "documents/<file_name>" layout.
const documentKeyPrefix = "documents/"

// Client wraps an S3-compatible object store, adding the worker's retry
// policy and multi-tenant key prefixing around the raw SDK calls.
type Client struct {
	s3          *s3.Client
	bucket      string
	multiTenant bool
	policy      *retry.Policy
	logger      arbor.ILogger
}

// New builds a Client from the worker's S3 config section. The endpoint is
// always treated as a custom, path-style endpoint since the source targets
// self-hosted S3-compatible stores, not AWS itself. multiTenant comes from
// the global experimental.moreAppsEnabled switch, not the S3 section.
func New(ctx context.Context, cfg config.S3Config, multiTenant bool, logger arbor.ILogger) (*Client, error) {
	endpoint := normalizeEndpoint(cfg.URL)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:          client,
		bucket:      cfg.Bucket,
		multiTenant: multiTenant,
		policy:      retry.QueryPolicy(),
		logger:      logger,
	}, nil
}

// normalizeEndpoint prefixes a scheme-less URL with https://,
// mirroring the source's handling of endpoints that may or may not carry
// a scheme.
func normalizeEndpoint(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}

// EnsureBucket creates the configured bucket if it does not already exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	return c.policy.Execute(ctx, c.logger, func() error {
		_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
		if err == nil {
			return nil
		}

		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("checking bucket %q: %w", c.bucket, err)
		}

		_, err = c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
		if err != nil {
			return fmt.Errorf("creating bucket %q: %w", c.bucket, err)
		}
		return nil
	})
}

// StoreDocument uploads a finished document's bytes under the tenant's
// namespace (when multi-tenant mode is on) and returns the full object key.
func (c *Client) StoreDocument(ctx context.Context, appUUID, fileName, contentType string, data []byte) (string, error) {
	key := c.documentKey(appUUID, fileName)

	err := c.policy.Execute(ctx, c.logger, func() error {
		_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("storing document %q: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// DownloadFile fetches the object at key and writes it to w. It returns
// (false, nil) when the object does not exist, matching the source's
// NoSuchKey-means-absent semantics rather than treating it as an error.
func (c *Client) DownloadFile(ctx context.Context, key string, w io.Writer) (bool, error) {
	var found bool

	err := c.policy.Execute(ctx, c.logger, func() error {
		out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var noSuchKey *types.NoSuchKey
			if errors.As(err, &noSuchKey) {
				found = false
				return nil
			}
			return fmt.Errorf("downloading %q: %w", key, err)
		}
		defer out.Body.Close()

		if _, err := io.Copy(w, out.Body); err != nil {
			return fmt.Errorf("reading downloaded body for %q: %w", key, err)
		}
		found = true
		return nil
	})

	return found, err
}

func (c *Client) documentKey(appUUID, fileName string) string {
	return c.TenantKey(appUUID, documentKeyPrefix+fileName)
}

// TenantKey prefixes key with the tenant's app_uuid when multi-tenant
// mode is on, the same namespacing StoreDocument applies to finished
// documents — used for any other per-tenant object, such as template
// assets resolved by the assembler.
func (c *Client) TenantKey(appUUID, key string) string {
	if c.multiTenant && appUUID != "" {
		return appUUID + "/" + key
	}
	return key
}
