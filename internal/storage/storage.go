// Package storage is the object store adapter (C2): put/get blobs and mint
// signed download URLs against an S3-compatible bucket, using aws-sdk-go
// the way the pack's own video pipeline does, rather than hand-rolling a
// REST client against a single vendor's API.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/cenkalti/backoff/v4"

	"github.com/duskreel/clipper/internal/apierrors"
)

type Storage struct {
	s3     *s3.S3
	bucket string
}

func New(bucket, region, endpoint, accessKey, secretKey string) (*Storage, error) {
	cfg := aws.NewConfig().
		WithRegion(region).
		WithCredentials(credentials.NewStaticCredentials(accessKey, secretKey, "")).
		WithS3ForcePathStyle(endpoint != "")
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, apierrors.New(apierrors.StorageError, "failed to create object store session", err)
	}
	return &Storage{s3: s3.New(sess), bucket: bucket}, nil
}

func retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 4 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}

// Upload puts a blob at key, retried with bounded exponential backoff for
// transient object-store failures (§7).
func (s *Storage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	operation := func() error {
		_, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return err
	}
	if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
		return apierrors.New(apierrors.StorageError, "failed to upload "+key, err)
	}
	return nil
}

// Download fetches a blob in full.
func (s *Storage) Download(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	operation := func() error {
		resp, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		out = data
		return nil
	}
	if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
		return nil, apierrors.New(apierrors.StorageError, "failed to download "+key, err)
	}
	return out, nil
}

// SignedURL returns a presigned GET URL valid for expiresIn — §6 specifies
// 24 hours for render output downloads.
func (s *Storage) SignedURL(key string, expiresIn time.Duration) (string, error) {
	req, _ := s.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiresIn)
	if err != nil {
		return "", apierrors.New(apierrors.StorageError, "failed to presign "+key, err)
	}
	return url, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apierrors.New(apierrors.StorageError, "failed to delete "+key, err)
	}
	return nil
}
