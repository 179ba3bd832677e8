package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	put    *s3.PutObjectInput
	body   string
	delete *s3.DeleteObjectInput
	err    error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delete = in
	return &s3.DeleteObjectOutput{}, f.err
}

func TestPut(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, "assets", "us-east-1", "", zap.NewNop())

	err := s.Put(context.Background(), "images/a.png", "image/png", strings.NewReader("png"), 3)

	require.NoError(t, err)
	assert.Equal(t, "assets", aws.ToString(api.put.Bucket))
	assert.Equal(t, "images/a.png", aws.ToString(api.put.Key))
	assert.Equal(t, "image/png", aws.ToString(api.put.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(api.put.ContentLength))
	assert.Equal(t, "png", api.body)
}

func TestDeleteAndErrors(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, "assets", "us-east-1", "", zap.NewNop())

	require.NoError(t, s.Delete(context.Background(), "images/a.png"))
	assert.Equal(t, "images/a.png", aws.ToString(api.delete.Key))

	api.err = errors.New("access denied")
	assert.ErrorContains(t, s.Delete(context.Background(), "images/a.png"), "access denied")
	assert.ErrorContains(t, s.Put(context.Background(), "k", "image/png", strings.NewReader(""), 0), "access denied")
}

func TestURL(t *testing.T) {
	s := NewStore(&fakeAPI{}, "assets", "eu-west-1", "", zap.NewNop())
	assert.Equal(t, "https://assets.s3.eu-west-1.amazonaws.com/images/a.png", s.URL("images/a.png"))

	s = NewStore(&fakeAPI{}, "assets", "eu-west-1", "https://cdn.example.com/", zap.NewNop())
	assert.Equal(t, "https://cdn.example.com/images/a.png", s.URL("/images/a.png"))
}
