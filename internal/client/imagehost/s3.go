package imagehost

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
	"github.com/dmitrijs2005/skincare/internal/netx"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	presignDeleteObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignDeleteObject(ctx, in, optFns...)
	}
)

// S3Config selects the bucket and credentials. An empty Endpoint means AWS
// itself; anything else (MinIO and friends) is addressed path-style.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Expiry    time.Duration
}

// S3 stores images in a bucket. The display and delete URLs are presigned
// GET and DELETE requests for the uploaded object.
type S3 struct {
	bucket  string
	expiry  time.Duration
	presign *s3.PresignClient
	http    *http.Client
	now     func() time.Time
}

func NewS3(ctx context.Context, cfg S3Config, hc *http.Client) (*S3, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.Expiry
	if expiry <= 0 || expiry > 7*24*time.Hour {
		expiry = 7 * 24 * time.Hour
	}
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}

	return &S3{
		bucket:  cfg.Bucket,
		expiry:  expiry,
		presign: s3.NewPresignClient(client),
		http:    hc,
		now:     time.Now,
	}, nil
}

// objectKey returns sessions/YYYY/M/D/<uuid>.jpg.
func (h *S3) objectKey() string {
	d := h.now()
	return fmt.Sprintf("sessions/%d/%d/%d/%v.jpg", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (h *S3) Upload(ctx context.Context, file models.ImageFile) (models.ImageRef, error) {
	bucket := h.bucket
	key := h.objectKey()
	contentType := file.ContentType

	put, err := presignPutObject(h.presign, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("presign put: %w", err)
	}

	if err := netx.PutPresigned(ctx, h.http, put.URL, contentType, file.Data); err != nil {
		return models.ImageRef{}, fmt.Errorf("%w: s3: %w", common.ErrTransport, err)
	}

	var ref models.ImageRef

	get, err := presignGetObject(h.presign, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key},
		s3.WithPresignExpires(h.expiry))
	if err == nil {
		ref.DisplayURL = get.URL
	}

	del, err := presignDeleteObject(h.presign, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key},
		s3.WithPresignExpires(h.expiry))
	if err == nil {
		ref.DeleteURL = del.URL
	}

	return ref, nil
}
