package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory. Multipart calls are never reached for the
// small bodies used here.
type fakeS3 struct {
	objects  map[string][]byte
	types    map[string]string
	modified map[string]time.Time
	pageSize int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  map[string][]byte{},
		types:    map[string]string{},
		modified: map[string]time.Time{},
		pageSize: 1000,
	}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	f.modified[key] = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ListObjectsV2 pages through keys in lexical order, using the last key of a
// page as the continuation token.
func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	bucket := aws.ToString(in.Bucket) + "/"
	var keys []string
	for k := range f.objects {
		key, ok := strings.CutPrefix(k, bucket)
		if ok && strings.HasPrefix(key, aws.ToString(in.Prefix)) && key > aws.ToString(in.ContinuationToken) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	for _, key := range keys {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(f.objects[bucket+key]))),
			LastModified: aws.Time(f.modified[bucket+key]),
		})
	}
	return out, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart upload not supported")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart upload not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart upload not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("multipart upload not supported")
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "certs", "prod")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "certificates/42/certificate.pdf", strings.NewReader("%PDF"), "application/pdf"))
	assert.Contains(t, fake.objects, "certs/prod/certificates/42/certificate.pdf")
	assert.Equal(t, "application/pdf", fake.types["certs/prod/certificates/42/certificate.pdf"])

	rc, err := store.Get(ctx, "certificates/42/certificate.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, store.Delete(ctx, "certificates/42/certificate.pdf"))
	_, err = store.Get(ctx, "certificates/42/certificate.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StoreWithoutPrefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "certs", "")

	require.NoError(t, store.Put(context.Background(), "a/b.pdf", strings.NewReader("x"), "application/pdf"))
	assert.Contains(t, fake.objects, "certs/a/b.pdf")
}

func TestS3StoreList(t *testing.T) {
	fake := newFakeS3()
	fake.pageSize = 2
	store := NewS3Store(fake, "certs", "prod")
	ctx := context.Background()

	for _, key := range []string{"certificates/a/certificate.pdf", "certificates/b/certificate.pdf", "certificates/c/certificate.pdf", "other/x"} {
		require.NoError(t, store.Put(ctx, key, strings.NewReader("%PDF"), "application/pdf"))
	}

	objects, err := store.List(ctx, "certificates/")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "certificates/a/certificate.pdf", objects[0].Key)
	assert.Equal(t, "certificates/c/certificate.pdf", objects[2].Key)
	assert.Equal(t, int64(4), objects[1].Size)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), objects[1].ModTime)
}
