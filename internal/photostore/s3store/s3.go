package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/photostore"
)

// objectAPI is the subset of s3iface.S3API the photo store uses.
type objectAPI interface {
	HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error)
	GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3PhotoStore keeps blobs as objects under a key prefix in one bucket.
type S3PhotoStore struct {
	client objectAPI
	bucket string
	prefix string
}

func NewS3PhotoStore(region, bucket, prefix string) (*S3PhotoStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return newS3PhotoStore(s3.New(sess), bucket, prefix), nil
}

func newS3PhotoStore(client objectAPI, bucket, prefix string) *S3PhotoStore {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3PhotoStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3PhotoStore) Save(ctx context.Context, suggestedName string, r io.Reader) (string, error) {
	key := uuid.NewString() + photostore.Ext(suggestedName)

	// S3 has no create-only put, so refuse to write over an existing object.
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err == nil {
		return "", fmt.Errorf("photo %q already exists", key)
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("failed to check photo: %w", err)
	}

	// PutObject needs a seekable body for request signing.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !photostore.ValidKey(key) {
		return nil, fmt.Errorf("photo %q: %w", key, domain.ErrNotFound)
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("photo %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return out.Body, nil
}

func (s *S3PhotoStore) objectKey(key string) string {
	return s.prefix + key
}

// isNotFound matches both GetObject's NoSuchKey and HeadObject's bare 404.
func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
