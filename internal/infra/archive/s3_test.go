package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Archive_Put(t *testing.T) {
	fake := &fakePutter{}
	a := NewS3Archive(fake, "payments-archive", "/webhooks/")

	err := a.Put(context.Background(), "mercadopago/2026/10/15/evt-1.json", []byte(`{"data":{"id":"1"}}`))
	require.NoError(t, err)

	require.Equal(t, "payments-archive", aws.ToString(fake.input.Bucket))
	require.Equal(t, "webhooks/mercadopago/2026/10/15/evt-1.json", aws.ToString(fake.input.Key))
	require.Equal(t, "application/json", aws.ToString(fake.input.ContentType))
	require.JSONEq(t, `{"data":{"id":"1"}}`, string(fake.body))
}

func TestS3Archive_PutError(t *testing.T) {
	a := NewS3Archive(&fakePutter{err: errors.New("access denied")}, "bucket", "")

	err := a.Put(context.Background(), "k.json", []byte(`{}`))
	require.ErrorContains(t, err, "access denied")
	require.ErrorContains(t, err, "k.json")
}
