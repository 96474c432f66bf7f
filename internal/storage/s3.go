// Package storage publishes saved gemreq responses to an S3 bucket.
//
// Objects live under <prefix>/YYYY/MM/DD/<file> for the archive and
// <prefix>/latest/<file> for the most recent publish.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const (
	defaultRegion = "us-west-2"
	latestDir     = "latest"
)

// objectStore is the subset of *s3.Client the publisher needs.
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Uploader writes payload, metadata and raw reply objects for one bucket and prefix.
type Uploader struct {
	store  objectStore
	bucket string
	prefix string
}

// New loads the default AWS credential chain for region and returns an
// Uploader. An empty region means us-west-2.
func New(ctx context.Context, bucket, prefix, region string) (*Uploader, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if region == "" {
		region = defaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(bucket, prefix, s3.NewFromConfig(cfg)), nil
}

// NewWithClient builds an Uploader over an existing client.
func NewWithClient(bucket, prefix string, store objectStore) *Uploader {
	return &Uploader{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (u *Uploader) Bucket() string { return u.bucket }

// Prefix is the key prefix without leading or trailing slashes.
func (u *Uploader) Prefix() string { return u.prefix }

// KeyForDate is the archive key of filename for the UTC day of t.
func (u *Uploader) KeyForDate(t time.Time, filename string) string {
	return u.key(t.UTC().Format("2006/01/02"), filename)
}

// KeyForLatest is the key of filename under latest/.
func (u *Uploader) KeyForLatest(filename string) string {
	return u.key(latestDir, filename)
}

func (u *Uploader) key(parts ...string) string {
	if u.prefix != "" {
		parts = append([]string{u.prefix}, parts...)
	}
	return strings.TrimPrefix(path.Join(parts...), "/")
}

// UploadFile stores the saved file at localPath under key.
func (u *Uploader) UploadFile(ctx context.Context, key, localPath, contentType, cacheControl string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return u.put(ctx, key, f, contentType, cacheControl)
}

// UploadBytes stores data under key. Used for objects rewritten at publish time.
func (u *Uploader) UploadBytes(ctx context.Context, key string, data []byte, contentType, cacheControl string) error {
	return u.put(ctx, key, bytes.NewReader(data), contentType, cacheControl)
}

func (u *Uploader) put(ctx context.Context, key string, body io.Reader, contentType, cacheControl string) error {
	in := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  optional(contentType),
		CacheControl: optional(cacheControl),
	}
	if _, err := u.store.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// Exists reports whether key is already published. Missing objects are not an error.
func (u *Uploader) Exists(ctx context.Context, key string) (bool, error) {
	_, err := u.store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// CopyToLatest points latest/<filename> at the archived object srcKey.
// Headers are replaced when contentType or cacheControl is set.
func (u *Uploader) CopyToLatest(ctx context.Context, srcKey, filename, contentType, cacheControl string) error {
	in := &s3.CopyObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(u.KeyForLatest(filename)),
		CopySource:   aws.String(copySource(u.bucket, srcKey)),
		ContentType:  optional(contentType),
		CacheControl: optional(cacheControl),
	}
	if contentType != "" || cacheControl != "" {
		in.MetadataDirective = types.MetadataDirectiveReplace
	}
	if _, err := u.store.CopyObject(ctx, in); err != nil {
		return fmt.Errorf("copy %s to latest: %w", srcKey, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

// copySource escapes each key segment; CopySource is sent URL-encoded.
func copySource(bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segs, "/")
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
