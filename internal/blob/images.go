// Package blob lists site images kept in S3-compatible object storage
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"

	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/models"
)

// ErrNotConfigured is returned when no bucket is set
var ErrNotConfigured = errors.New("blob storage not configured")

// ListObjectsAPI is the part of *s3.Client the image store uses
type ListObjectsAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// ImageStore lists image objects below a prefix
type ImageStore struct {
	bucket  string
	prefix  string
	baseURL string
	maxKeys int
	client  ListObjectsAPI
}

// NewImageStore creates a store over an existing client
func NewImageStore(client ListObjectsAPI, cfg config.BlobConfig) *ImageStore {
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = config.DefaultImageLimit
	}
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" && cfg.Bucket != "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &ImageStore{
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: baseURL,
		maxKeys: maxKeys,
		client:  client,
	}
}

// NewFromConfig builds an S3 client from the default AWS credential chain.
// Returns ErrNotConfigured when cfg has no bucket.
func NewFromConfig(ctx context.Context, cfg config.BlobConfig) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewImageStore(client, cfg), nil
}

// Configured reports whether the store can be queried
func (s *ImageStore) Configured() bool {
	return s != nil && s.client != nil && s.bucket != ""
}

// ListImages pages through objects below the configured prefix joined with sub
// and returns those whose extension is a known image type.
func (s *ImageStore) ListImages(ctx context.Context, sub string) ([]models.ImageObject, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	prefix := s.prefix + strings.TrimPrefix(sub, "/")
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}

	images := make([]models.ImageObject, 0)
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			mime, ok := imageMIME(key)
			if !ok {
				continue
			}
			img := models.ImageObject{
				Key:         key,
				URL:         s.baseURL + "/" + key,
				Size:        aws.ToInt64(obj.Size),
				ContentType: mime,
			}
			if obj.LastModified != nil {
				img.LastModified = *obj.LastModified
			}
			images = append(images, img)
			if len(images) >= s.maxKeys {
				return images, nil
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return images, nil
		}
		input.ContinuationToken = out.NextContinuationToken
	}
}

// imageMIME maps a key's extension to an image MIME type
func imageMIME(key string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	switch ext {
	case "":
		return "", false
	case "jpeg":
		ext = "jpg"
	}
	t := filetype.GetType(ext)
	if t == filetype.Unknown || t.MIME.Type != "image" {
		return "", false
	}
	return t.MIME.Value, true
}
