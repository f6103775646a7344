package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const jsonContentType = "application/json"

// ErrNotFound is returned when the addressed object does not exist.
var ErrNotFound = errors.New("objectstore: object not found")

// s3API is the minimal S3 interface required by Store.
// *s3.Client satisfies it.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// presignAPI is satisfied by *s3.PresignClient.
type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ s3API      = (*s3.Client)(nil)
	_ presignAPI = (*s3.PresignClient)(nil)
)

// Store reads and writes objects of a single bucket.
type Store struct {
	api       s3API
	presigner presignAPI
	bucket    string
}

// New creates a Store. presigner may be nil when uploads are not served.
func New(api s3API, presigner presignAPI, bucket string) (*Store, error) {
	if api == nil {
		return nil, errors.New("objectstore: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("objectstore: bucket must not be empty")
	}
	return &Store{api: api, presigner: presigner, bucket: bucket}, nil
}

// Get returns the body of the object at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("objectstore: Get %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("objectstore: Get %q: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: Get %q read body: %w", key, err)
	}
	return body, nil
}

// GetJSON decodes the JSON object at key into v.
func (s *Store) GetJSON(ctx context.Context, key string, v any) error {
	body, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("objectstore: GetJSON %q: empty object: %w", key, ErrNotFound)
	}
	if err := ParseJSON(body, v); err != nil {
		return fmt.Errorf("objectstore: GetJSON %q: %w", key, err)
	}
	return nil
}

// PutJSON writes v as indented JSON at key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	body, err := FormatJSON(v)
	if err != nil {
		return fmt.Errorf("objectstore: PutJSON %q: %w", key, err)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(jsonContentType),
	})
	if err != nil {
		return fmt.Errorf("objectstore: PutJSON %q: %w", key, err)
	}
	return nil
}

// PutMarker writes a zero-byte directory marker. key should end with "/".
func (s *Store) PutMarker(ctx context.Context, key string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("objectstore: PutMarker %q: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is stored at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: Exists %q: %w", key, err)
	}
	return true, nil
}

// Copy duplicates the object at src to dst within the bucket.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	_, err := s.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(copySource(s.bucket, src)),
		Key:        aws.String(dst),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("objectstore: Copy %q: %w", src, ErrNotFound)
		}
		return fmt.Errorf("objectstore: Copy %q to %q: %w", src, dst, err)
	}
	return nil
}

// List returns every key under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("objectstore: List %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// PresignPut returns a URL that accepts a single PUT of the object at key
// until ttl elapses.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", errors.New("objectstore: presigner not configured")
	}
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("objectstore: PresignPut %q: %w", key, err)
	}
	return req.URL, nil
}

func copySource(bucket, key string) string {
	return url.PathEscape(bucket) + "/" + (&url.URL{Path: key}).EscapedPath()
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
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
