package mock

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	t.Run("host is lowercased", func(t *testing.T) {
		a := NewKey("API.Example.COM", "/users", nil, QueryExact)
		b := NewKey("api.example.com", "/users", nil, QueryExact)
		assert.Equal(t, "api.example.com", a.Host)
		assert.True(t, a.Equal(b))
	})

	t.Run("empty mode defaults to exact", func(t *testing.T) {
		k := NewKey("example.com", "/", map[string]string{"q": "1"}, "")
		assert.Equal(t, QueryExact, k.QueryMode)
	})

	t.Run("query map is copied", func(t *testing.T) {
		q := map[string]string{"q": "swift"}
		k := NewKey("example.com", "/search", q, QueryContains)
		q["q"] = "go"
		assert.Equal(t, "swift", k.Query["q"])
	})
}

func TestKeyID(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Key
		equal bool
	}{
		{
			name:  "identical",
			a:     NewKey("example.com", "/a", nil, QueryExact),
			b:     NewKey("example.com", "/a", nil, QueryExact),
			equal: true,
		},
		{
			name:  "query order is irrelevant",
			a:     NewKey("example.com", "/a", map[string]string{"x": "1", "y": "2"}, QueryExact),
			b:     NewKey("example.com", "/a", map[string]string{"y": "2", "x": "1"}, QueryExact),
			equal: true,
		},
		{
			name:  "nil and empty constraints differ",
			a:     NewKey("example.com", "/a", nil, QueryExact),
			b:     NewKey("example.com", "/a", map[string]string{}, QueryExact),
			equal: false,
		},
		{
			name:  "mode matters",
			a:     NewKey("example.com", "/a", map[string]string{"x": "1"}, QueryExact),
			b:     NewKey("example.com", "/a", map[string]string{"x": "1"}, QueryContains),
			equal: false,
		},
		{
			name:  "path matters",
			a:     NewKey("example.com", "/a", nil, QueryExact),
			b:     NewKey("example.com", "/b", nil, QueryExact),
			equal: false,
		},
		{
			name:  "separator characters cannot collide",
			a:     NewKey("example.com", "/a", map[string]string{"x": "1=y"}, QueryExact),
			b:     NewKey("example.com", "/a", map[string]string{"x=1": "y"}, QueryExact),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/users", NormalizePath("users"))
	assert.Equal(t, "/users", NormalizePath("/users"))
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "**/users", NormalizePath("**/users"))
}

func TestKeyString(t *testing.T) {
	k := NewKey("example.com", "/search", map[string]string{"q": "swift", "page": "1"}, QueryContains)
	assert.Equal(t, "example.com/search [query contains: page=1&q=swift]", k.String())

	bare := NewKey("example.com", "/", nil, QueryExact)
	assert.Equal(t, "example.com/ [query empty]", bare.String())

	assert.Equal(t, "[query: a=b]", DescribeQuery(map[string]string{"a": "b"}, ""))
}

func TestParseQueryMode(t *testing.T) {
	assert.Equal(t, QueryContains, ParseQueryMode("contains"))
	assert.Equal(t, QueryContains, ParseQueryMode("CONTAINS"))
	assert.Equal(t, QueryExact, ParseQueryMode("exact"))
	assert.Equal(t, QueryExact, ParseQueryMode(""))
	assert.Equal(t, QueryExact, ParseQueryMode("bogus"))
}

func TestLifetime(t *testing.T) {
	assert.True(t, Single().Valid())
	assert.True(t, Eternal().Valid())
	assert.True(t, Multiple(1).Valid())
	assert.False(t, Multiple(0).Valid())
	assert.False(t, Multiple(-1).Valid())

	assert.True(t, Eternal().IsEternal())
	assert.False(t, Multiple(3).IsEternal())

	assert.Equal(t, Single(), Lifetime{}, "zero value is single")
	assert.Equal(t, "multiple(3)", Multiple(3).String())
	assert.Equal(t, "eternal", Eternal().String())
	assert.Equal(t, "single", Single().String())
}

func TestDeliveryWait(t *testing.T) {
	t.Run("instant returns immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, Instant().Wait(ctx))
	})

	t.Run("delayed waits", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, Delayed(20*time.Millisecond).Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("delayed is cancellable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := Delayed(time.Minute).Wait(ctx)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	assert.Equal(t, "instant", Instant().String())
	assert.Equal(t, "delayed(1.5s)", Delayed(1500*time.Millisecond).String())
}

func TestConstructors(t *testing.T) {
	t.Run("plaintext", func(t *testing.T) {
		r := Plaintext("hello")
		assert.Equal(t, http.StatusOK, r.Status)
		assert.Equal(t, []byte("hello"), r.Payload.Body)
		assert.Equal(t, map[string]string{"Content-Type": "text/plain"}, r.Headers)
		assert.Equal(t, Single(), r.Lifetime)
		assert.False(t, r.Delivery.IsDelayed())
	})

	t.Run("json", func(t *testing.T) {
		r, err := JSON(map[string]int{"id": 1}, WithStatus(http.StatusCreated))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, r.Status)
		assert.JSONEq(t, `{"id":1}`, string(r.Payload.Body))
		assert.Equal(t, ContentTypeJSON, r.Headers["Content-Type"])
	})

	t.Run("json encoding error", func(t *testing.T) {
		_, err := JSON(make(chan int))
		assert.Error(t, err)
	})

	t.Run("raw json validates input", func(t *testing.T) {
		_, err := RawJSON([]byte(`{"broken"`))
		assert.Error(t, err)

		r, err := RawJSON([]byte(`[1,2]`))
		require.NoError(t, err)
		assert.Equal(t, ContentTypeJSON, r.Payload.ContentType)
	})

	t.Run("empty has no content type", func(t *testing.T) {
		r := Empty(WithStatus(http.StatusNoContent))
		assert.True(t, r.Payload.IsEmpty())
		assert.Equal(t, []byte{}, r.Payload.Bytes())
		assert.Empty(t, r.Headers)
		assert.NotNil(t, r.Headers)
	})

	t.Run("caller headers override default content type", func(t *testing.T) {
		r := Plaintext("x", WithHeaders(map[string]string{"content-type": "text/csv", "X-Id": "1"}))
		assert.Equal(t, map[string]string{"content-type": "text/csv", "X-Id": "1"}, r.Headers)
	})

	t.Run("lifetime and delay options", func(t *testing.T) {
		r := Empty(WithLifetime(Multiple(2)), WithDelay(time.Second))
		assert.Equal(t, Multiple(2), r.Lifetime)
		assert.Equal(t, Delayed(time.Second), r.Delivery)
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "user.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"ada"}`), 0o600))

		r, err := File(path)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"ada"}`, string(r.Payload.Body))
		assert.Equal(t, "application/json", r.Payload.ContentType)

		_, err = File(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	assert.Equal(t, ContentTypeOctet, ContentTypeForFile("blob.unknownext"))
}

func TestWithLifetimeCopies(t *testing.T) {
	orig := Plaintext("a", WithLifetime(Multiple(3)))
	next := orig.WithLifetime(Multiple(2))
	assert.Equal(t, Multiple(3), orig.Lifetime)
	assert.Equal(t, Multiple(2), next.Lifetime)
	assert.Equal(t, orig.Payload, next.Payload)
}

func TestAddingHeaders(t *testing.T) {
	r := Plaintext("ok", WithHeaders(map[string]string{"X-Shared": "response"}))
	merged := r.AddingHeaders(map[string]string{"x-shared": "host", "X-Host": "h"})

	assert.Equal(t, "response", merged.Headers["X-Shared"])
	assert.NotContains(t, merged.Headers, "x-shared")
	assert.Equal(t, "h", merged.Headers["X-Host"])
	assert.Equal(t, "text/plain", merged.Headers["Content-Type"])
	assert.NotContains(t, r.Headers, "X-Host", "original is untouched")

	same := r.AddingHeaders(nil)
	assert.Equal(t, r.Headers, same.Headers)
}

func TestHTTPHeader(t *testing.T) {
	r := Empty(WithHeaders(map[string]string{"x-request-id": "abc"}))
	h := r.HTTPHeader()
	assert.Equal(t, "abc", h.Get("X-Request-Id"))
}
