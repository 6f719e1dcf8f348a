// Package storage keeps uploaded vaccination card images in S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/config"
	"github.com/dmitrijs2005/vetintake/internal/cryptox"
)

// MaxImageSize is the largest accepted card image.
const MaxImageSize = 20 << 20

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner is the part of the S3 presign client used for previews.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ScanUpload is one card image to store.
type ScanUpload struct {
	PetID       string
	FileName    string
	ContentType string
	Data        []byte
}

// StoredScan describes an uploaded image.
type StoredScan struct {
	Key         string
	Fingerprint string
	ContentType string
	Size        int64
}

type ScanStore struct {
	client    ObjectPutter
	presigner Presigner
	bucket    string
	ttl       time.Duration
	now       func() time.Time
}

func NewScanStore(client ObjectPutter, presigner Presigner, bucket string, ttl time.Duration) *ScanStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ScanStore{client: client, presigner: presigner, bucket: bucket, ttl: ttl, now: time.Now}
}

// NewS3ScanStore connects to the bucket described by cfg using static
// credentials. Path-style addressing keeps MinIO endpoints working.
func NewS3ScanStore(ctx context.Context, cfg *config.Config) (*ScanStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return NewScanStore(client, s3.NewPresignClient(client), cfg.S3Bucket, cfg.PresignTTL), nil
}

// Validate checks that u is a non-empty image within MaxImageSize. When
// ContentType is empty it is sniffed from the data and filled in.
func Validate(u *ScanUpload) error {
	if len(u.Data) == 0 {
		return fmt.Errorf("%w: empty file", common.ErrUnsupportedImage)
	}
	if len(u.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", common.ErrImageTooLarge, len(u.Data), MaxImageSize)
	}
	if u.ContentType == "" {
		u.ContentType = http.DetectContentType(u.Data)
	}
	if !strings.HasPrefix(strings.ToLower(u.ContentType), "image/") {
		return fmt.Errorf("%w: %s", common.ErrUnsupportedImage, u.ContentType)
	}
	return nil
}

// Key builds the object key <petID>/<unixMillis>-<fileName>.
func Key(petID, fileName string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "scan"
	}
	return fmt.Sprintf("%s/%d-%s", petID, at.UnixMilli(), name)
}

// Upload validates u and stores it. Objects are never overwritten.
func (s *ScanStore) Upload(ctx context.Context, u ScanUpload) (*StoredScan, error) {
	if u.PetID == "" {
		return nil, common.ErrMissingTarget
	}
	if err := Validate(&u); err != nil {
		return nil, err
	}

	key := Key(u.PetID, u.FileName, s.now())
	fingerprint := cryptox.Fingerprint(u.Data)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(u.Data),
		ContentType:   aws.String(u.ContentType),
		ContentLength: aws.Int64(int64(len(u.Data))),
		IfNoneMatch:   aws.String("*"),
		Metadata:      map[string]string{"fingerprint": fingerprint},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &StoredScan{
		Key:         key,
		Fingerprint: fingerprint,
		ContentType: u.ContentType,
		Size:        int64(len(u.Data)),
	}, nil
}

// PresignGet returns a time-limited preview URL for key.
func (s *ScanStore) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
