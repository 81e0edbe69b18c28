package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	apperrors "hrportal/internal/errors"
)

// DefaultPresignExpiry bounds the lifetime of presigned links.
const DefaultPresignExpiry = 15 * time.Minute

// S3Config configures an S3-compatible backend (AWS, MinIO).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Folder          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// S3Store keeps each blob as one object under Folder in Bucket.
type S3Store struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	folder        string
	presignExpiry time.Duration
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Store builds the S3 client. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &S3Store{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		folder:        cfg.Folder,
		presignExpiry: expiry,
	}, nil
}

func (s *S3Store) key(ref string) string {
	return path.Join(s.folder, ref)
}

// Put uploads obj. The reference is a fresh UUID; obj.Name travels as
// object metadata and content disposition.
func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	if obj.Body == nil {
		return "", fmt.Errorf("body is required")
	}
	ref := uuid.NewString()
	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(s.key(ref)),
		Body:               obj.Body,
		ContentType:        aws.String(obj.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", obj.Name)),
		Metadata:           map[string]string{"name": obj.Name},
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", apperrors.NewStoreError(blobStore, "put", err)
	}
	return ref, nil
}

// Open downloads the object stored under ref.
func (s *S3Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, apperrors.NewStoreError(blobStore, "open", err)
	}
	return out.Body, nil
}

// Link presigns a GET for ref.
func (s *S3Store) Link(ctx context.Context, ref string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return "", apperrors.NewStoreError(blobStore, "presign", err)
	}
	return req.URL, nil
}
