package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultMaxSize caps objects read from S3.
const DefaultMaxSize = 8 << 20

// S3API is the part of the S3 client the loader uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads s3://bucket/key URIs.
type S3Loader struct {
	client  S3API
	maxSize int64
}

// NewS3Loader creates an S3 loader with DefaultMaxSize.
func NewS3Loader(client S3API) *S3Loader {
	return &S3Loader{client: client, maxSize: DefaultMaxSize}
}

// WithMaxSize sets the object size limit. 0 means no limit.
func (l *S3Loader) WithMaxSize(n int64) *S3Loader {
	l.maxSize = n
	return l
}

// Schemes implements Loader.
func (l *S3Loader) Schemes() []string {
	return []string{"s3"}
}

// Load implements Loader. A missing bucket or key is reported as
// fs.ErrNotExist.
func (l *S3Loader) Load(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("source: %s: %w", uri, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("source: s3 get %s: %w", uri, err)
	}
	defer out.Body.Close()

	var r io.Reader = out.Body
	if l.maxSize > 0 {
		r = io.LimitReader(out.Body, l.maxSize+1)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return nil, fmt.Errorf("source: s3 read %s: %w", uri, err)
	}
	if l.maxSize > 0 && n > l.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, uri)
	}
	return buf.Bytes(), nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q is not an s3 uri", ErrInvalidURI, uri)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q needs a bucket and a key", ErrInvalidURI, uri)
	}
	return bucket, key, nil
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region    string
	Endpoint  string // for S3-compatible servers; "" uses AWS
	PathStyle bool
}

// NewS3Client builds an S3 client whose credentials come from the
// standard AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// variables.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.PathStyle,
		Credentials:  aws.NewCredentialsCache(envCredentials()),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("source: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}
