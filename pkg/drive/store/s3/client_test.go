package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/marmos91/dittodrive/internal/telemetry"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// fakeS3 answers every request with status and, unless code is empty, an
// S3 error document carrying code.
func fakeS3(t *testing.T, status int, code string) *Store {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		if code != "" && r.Method != http.MethodHead {
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
		}
	}))
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	return New(client, Config{Bucket: "drive"})
}

func notFound(code string) error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
		Err:      &smithy.GenericAPIError{Code: code},
	}
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed missing key", fmt.Errorf("get: %w", &types.NoSuchKey{}), true},
		{"generic missing key", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"bodiless 404", notFound("NotFound"), true},
		{"NotFound without a 404", &smithy.GenericAPIError{Code: "NotFound"}, false},
		{"missing bucket", notFound("NoSuchBucket"), false},
		{"status text only", errors.New("StatusCode: 404, NotFound"), false},
		{"access denied", errors.New("access denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFoundError(tt.err))
		})
	}
}

func TestNew_DefaultKey(t *testing.T) {
	s := New(nil, Config{Bucket: "b"})
	assert.Equal(t, DefaultKey, s.key)

	s = New(nil, Config{Bucket: "b", Key: "k.json"})
	assert.Equal(t, "k.json", s.key)
}

func TestLoad_MissingObject(t *testing.T) {
	st := fakeS3(t, http.StatusNotFound, "NoSuchKey")

	_, err := st.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestLoad_MissingBucket(t *testing.T) {
	st := fakeS3(t, http.StatusNotFound, "NoSuchBucket")

	_, err := st.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNoSnapshot)
	assert.ErrorContains(t, err, "NoSuchBucket")
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, fakeS3(t, http.StatusOK, "").HealthCheck(ctx))
	assert.Error(t, fakeS3(t, http.StatusNotFound, "").HealthCheck(ctx))

	closed := fakeS3(t, http.StatusOK, "")
	require.NoError(t, closed.Close())
	assert.ErrorIs(t, closed.HealthCheck(ctx), store.ErrStoreClosed)
}

func TestSpansCarryBucketAndKey(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		_ = tp.Shutdown(context.Background())
	})

	st := fakeS3(t, http.StatusOK, "")
	require.NoError(t, st.HealthCheck(context.Background()))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "store.s3.head_bucket", ended[0].Name())

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "s3", attrs[telemetry.AttrStoreType])
	assert.Equal(t, "drive", attrs[telemetry.AttrBucket])
	assert.Equal(t, DefaultKey, attrs[telemetry.AttrStorageKey])
}
