package s3source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ValentinKolb/fetchd/lib/source"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config holds the connection parameters for an S3 backed source.
type Config struct {
	// Bucket is the name of the bucket to serve (required)
	Bucket string
	// Region is the AWS region of the bucket
	Region string
	// Endpoint is a custom endpoint URL, e.g. for MinIO (empty = AWS)
	Endpoint string
	// KeyPrefix is prepended to every object key, acting as the served
	// directory within the bucket
	KeyPrefix string
	// AccessKeyID and SecretAccessKey override the default credential
	// chain when set
	AccessKeyID     string
	SecretAccessKey string
	// ForcePathStyle enables path-style addressing (required for MinIO)
	ForcePathStyle bool
	// TimeoutSecond bounds every S3 call (0 = no bound)
	TimeoutSecond int64
}

// S3API is the subset of the S3 client the source uses. The source only
// depends on this interface so tests can run against a fake.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source implements the source.ISource interface on top of an S3 bucket
type s3Source struct {
	client S3API
	cfg    Config
}

// --------------------------------------------------------------------------
// Interface Methods (docu see source.ISource)
// --------------------------------------------------------------------------

func (s *s3Source) List() ([]byte, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
	}
	if s.cfg.KeyPrefix != "" {
		input.Prefix = aws.String(s.cfg.KeyPrefix)
	}

	var listing []byte
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, source.NewError(source.RetCListFailed, fmt.Sprintf("failed to list bucket %s: %v", s.cfg.Bucket, err))
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.cfg.KeyPrefix)
			// Skip the prefix marker object itself
			if name == "" {
				continue
			}
			listing = append(listing, name...)
			listing = append(listing, '\n')
		}
	}

	if len(listing) == 0 {
		return append([]byte(nil), source.EmptyListing...), nil
	}

	return listing, nil
}

func (s *s3Source) Read(name string) ([]byte, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	key := s.cfg.KeyPrefix + name
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("object %s not found in bucket %s", key, s.cfg.Bucket))
		}
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("failed to get object %s: %v", key, err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("failed to read object %s: %v", key, err))
	}

	return data, nil
}

func (s *s3Source) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// opCtx returns the bounded context for a single S3 call
func (s *s3Source) opCtx() (context.Context, context.CancelFunc) {
	if s.cfg.TimeoutSecond > 0 {
		return context.WithTimeout(context.Background(), time.Duration(s.cfg.TimeoutSecond)*time.Second)
	}
	return context.WithCancel(context.Background())
}

// --------------------------------------------------------------------------
// Source Factory Methods
// --------------------------------------------------------------------------

// New creates a source serving the objects of a bucket with the given
// client. Production code uses NewFromConfig, tests inject a fake client
// here.
func New(client S3API, cfg Config) source.ISource {
	return &s3Source{
		client: client,
		cfg:    cfg,
	}
}

// NewFromConfig creates a source with a real S3 client built from the
// default credential chain plus the overrides in cfg.
func NewFromConfig(ctx context.Context, cfg Config) (source.ISource, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("no bucket configured")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return New(client, cfg), nil
}
