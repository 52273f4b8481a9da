package imagestore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the PUT and DELETE object calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Path style: /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Request:    req,
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		resp.Header.Set("ETag", `"etag"`)
	case http.MethodDelete:
		delete(f.objects, key)
		resp.StatusCode = http.StatusNoContent
	default:
		resp.StatusCode = http.StatusNotImplemented
	}
	return resp, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	s, err := NewS3(context.Background(), Config{
		Bucket:          "omara",
		Region:          "eu-central-1",
		Endpoint:        "https://s3.example.test",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, s.Driver())

	ctx := context.Background()
	url, err := s.Put(ctx, "clothes/u-1/a.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.test/omara/clothes/u-1/a.jpg", url)

	body, ok := fake.objects["clothes/u-1/a.jpg"]
	require.True(t, ok)
	// The SDK may frame the payload with aws-chunked encoding.
	assert.True(t, bytes.Contains(body, []byte("jpeg-bytes")))

	require.NoError(t, s.Delete(ctx, "clothes/u-1/a.jpg"))
	assert.Empty(t, fake.objects)
}

func TestS3DefaultURL(t *testing.T) {
	assert.Equal(t, "https://bucket.s3.us-east-1.amazonaws.com", objectBaseURL(Config{Bucket: "bucket"}, "us-east-1"))
}
