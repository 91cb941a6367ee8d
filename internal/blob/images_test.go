package blob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/go-while/go-toolsite/internal/config"
)

// fakeS3 serves canned pages keyed by continuation token
type fakeS3 struct {
	pages    map[string]*s3.ListObjectsV2Output
	err      error
	prefixes []string
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.prefixes = append(f.prefixes, aws.ToString(in.Prefix))
	return f.pages[aws.ToString(in.ContinuationToken)], nil
}

func obj(key string, size int64) types.Object {
	return types.Object{Key: aws.String(key), Size: aws.Int64(size), LastModified: aws.Time(time.Unix(1700000000, 0).UTC())}
}

func TestListImagesPagesAndFilters(t *testing.T) {
	fake := &fakeS3{pages: map[string]*s3.ListObjectsV2Output{
		"": {
			Contents:              []types.Object{obj("images/a.png", 10), obj("images/readme.txt", 1)},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("p2"),
		},
		"p2": {
			Contents:    []types.Object{obj("images/b.JPEG", 20), obj("images/noext", 3)},
			IsTruncated: aws.Bool(false),
		},
	}}
	store := NewImageStore(fake, config.BlobConfig{Bucket: "site", Prefix: "images/", PublicBaseURL: "https://cdn.example.com/"})

	imgs, err := store.ListImages(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	require.Equal(t, "https://cdn.example.com/images/a.png", imgs[0].URL)
	require.Equal(t, "image/png", imgs[0].ContentType)
	require.Equal(t, int64(10), imgs[0].Size)
	require.Equal(t, "image/jpeg", imgs[1].ContentType)
	require.Equal(t, []string{"images/", "images/"}, fake.prefixes)
}

func TestListImagesRespectsMaxKeysAndSubPrefix(t *testing.T) {
	fake := &fakeS3{pages: map[string]*s3.ListObjectsV2Output{
		"": {Contents: []types.Object{obj("images/logos/a.png", 1), obj("images/logos/b.gif", 1), obj("images/logos/c.webp", 1)}},
	}}
	store := NewImageStore(fake, config.BlobConfig{Bucket: "site", Region: "eu-west-1", Prefix: "images/", MaxKeys: 2})

	imgs, err := store.ListImages(context.Background(), "/logos/")
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	require.Equal(t, []string{"images/logos/"}, fake.prefixes)
	require.Equal(t, "https://site.s3.eu-west-1.amazonaws.com/images/logos/a.png", imgs[0].URL)
}

func TestListImagesErrors(t *testing.T) {
	var nilStore *ImageStore
	_, err := nilStore.ListImages(context.Background(), "")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewFromConfig(context.Background(), config.BlobConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("access denied")
	store := NewImageStore(&fakeS3{err: boom}, config.BlobConfig{Bucket: "site"})
	_, err = store.ListImages(context.Background(), "")
	require.ErrorIs(t, err, boom)
}
