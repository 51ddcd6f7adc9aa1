package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/sultan0alshami/wathiq-sub001/internal/server/config"
)

type fakeObjects struct {
	puts      map[string][]byte
	putTypes  map[string]string
	deleted   []string
	putErr    error
	deleteErr error
	deleteOut *s3.DeleteObjectsOutput
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{puts: map[string][]byte{}, putTypes: map[string]string{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = b
	f.putTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	for _, o := range in.Delete.Objects {
		f.deleted = append(f.deleted, aws.ToString(o.Key))
	}
	if f.deleteOut != nil {
		return f.deleteOut, nil
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestPut(t *testing.T) {
	f := newFakeObjects()
	s := &S3Store{api: f, bucket: "b"}

	require.NoError(t, s.Put(context.Background(), "trips/t1/x-a.jpg", []byte("img"), "image/jpeg"))
	assert.Equal(t, []byte("img"), f.puts["trips/t1/x-a.jpg"])
	assert.Equal(t, "image/jpeg", f.putTypes["trips/t1/x-a.jpg"])

	f.putErr = errors.New("denied")
	err := s.Put(context.Background(), "k", nil, "image/png")
	require.ErrorContains(t, err, "put object k")
}

func TestDelete(t *testing.T) {
	t.Run("no keys is a no-op", func(t *testing.T) {
		f := newFakeObjects()
		f.deleteErr = errors.New("must not be called")
		require.NoError(t, (&S3Store{api: f}).Delete(context.Background()))
	})

	t.Run("batch", func(t *testing.T) {
		f := newFakeObjects()
		require.NoError(t, (&S3Store{api: f, bucket: "b"}).Delete(context.Background(), "a", "b"))
		assert.Equal(t, []string{"a", "b"}, f.deleted)
	})

	t.Run("per-object error", func(t *testing.T) {
		f := newFakeObjects()
		f.deleteOut = &s3.DeleteObjectsOutput{Errors: []types.Error{{Key: aws.String("a"), Message: aws.String("AccessDenied")}}}
		err := (&S3Store{api: f}).Delete(context.Background(), "a")
		require.EqualError(t, err, "delete object a: AccessDenied")
	})

	t.Run("request error", func(t *testing.T) {
		f := newFakeObjects()
		f.deleteErr = errors.New("boom")
		require.Error(t, (&S3Store{api: f}).Delete(context.Background(), "a"))
	})
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	st, err := NewS3Store(context.Background(), &sc.Config{
		S3Region: "eu-central-1", S3RootUser: "minio", S3RootPassword: "pw",
		S3Bucket: "photos", S3BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "photos", st.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_LoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), &sc.Config{})
	require.ErrorContains(t, err, "load aws config")
}

func TestPresignGet(t *testing.T) {
	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("k", "s", ""),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("http://127.0.0.1:9000")
		o.UsePathStyle = true
	})
	s := &S3Store{presign: s3.NewPresignClient(client), bucket: "photos"}

	url, err := s.PresignGet(context.Background(), "trips/t1/ab-car.jpg", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/photos/trips/t1/ab-car.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Expires=600")
}

func TestPhotoKey(t *testing.T) {
	k1 := PhotoKey("t1", "car photo.jpg", []byte("abc"))
	k2 := PhotoKey("t1", "car photo.jpg", []byte("abc"))
	k3 := PhotoKey("t1", "car photo.jpg", []byte("abd"))

	assert.Equal(t, k1, k2, "same content, same key")
	assert.NotEqual(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, "trips/t1/"))
	assert.True(t, strings.HasSuffix(k1, "-car_photo.jpg"))
	assert.Len(t, strings.TrimPrefix(k1, "trips/t1/"), 16+1+len("car_photo.jpg"))
}

func TestSafeSegment(t *testing.T) {
	cases := map[string]string{
		"car.jpg":           "car.jpg",
		"../../etc/passwd":  "passwd",
		`C:\photos\a b.png`: "a_b.png",
		"صورة.jpg":          "____.jpg",
		"":                  "x",
		"..":                "x",
		"///":               "x",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeSegment(in, "x"), in)
	}
}
