package integrations

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"Classes":[{"Id":1}]}`

func compress(t *testing.T, enc string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch enc {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, _ = w.Write([]byte(payload))
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, _ = w.Write([]byte(payload))
		require.NoError(t, w.Close())
	case "zstd":
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, _ = w.Write([]byte(payload))
		require.NoError(t, w.Close())
	default:
		buf.WriteString(payload)
	}
	return buf.Bytes()
}

func TestGetJSON_Encodings(t *testing.T) {
	for _, enc := range []string{"", "gzip", "br", "zstd"} {
		t.Run("enc="+enc, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "secret", r.Header.Get("Api-Key"))
				assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
				if enc != "" {
					w.Header().Set("Content-Encoding", enc)
				}
				_, _ = w.Write(compress(t, enc))
			}))
			defer srv.Close()

			var out struct {
				Classes []struct{ Id int }
			}
			err := GetJSON(context.Background(), srv.Client(), srv.URL, map[string]string{"Api-Key": "secret"}, "test-agent", &out)
			require.NoError(t, err)
			require.Len(t, out.Classes, 1)
			assert.Equal(t, 1, out.Classes[0].Id)
		})
	}
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	var out map[string]any
	err := GetJSON(context.Background(), srv.Client(), srv.URL+"/x?ApiKey=abc&StoreId=1", nil, "", &out)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.True(t, se.Transient())
	assert.Equal(t, "maintenance", se.Body)
	assert.NotContains(t, se.URL, "abc")
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	c, err := NewHTTPClient(0, "http://proxy.local:3128")
	require.NoError(t, err)
	tr := c.Transport.(*http.Transport)
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)

	_, err = NewHTTPClient(0, "://bad")
	assert.Error(t, err)
}

func TestExpandTemplates(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://studio.example/schedule?d=2026-03-02", ExpandURL("https://studio.example/schedule?d={date}", day))
	assert.Equal(t, "https://studio.example/schedule", ExpandURL("https://studio.example/schedule", day))
	assert.Equal(t, "https://www.cyclebar.com/location/cyclebar-sf-soma/book",
		ExpandStudio("https://www.cyclebar.com/location/{studio_id}/book", "cyclebar-sf-soma"))
}

func TestPageDays(t *testing.T) {
	window := ScheduleWindow(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.UTC, 7)

	assert.Len(t, PageDays("https://studio.example/schedule?d={date}", window), 7)
	assert.Equal(t, window[:1], PageDays("https://studio.example/schedule", window))
	assert.Equal(t, window[:1], PageDays("", window))
	assert.Empty(t, PageDays("https://x/{date}", nil))
}
