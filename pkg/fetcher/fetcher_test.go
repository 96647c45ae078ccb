package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<p>قانون</p>"))
		case "/missing":
			http.NotFound(w, r)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := New(nil)
	ctx := context.Background()

	content, err := f.Fetch(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, http.StatusOK, content.StatusCode)
	assert.Equal(t, "utf-8", content.Encoding)
	assert.Equal(t, "<p>قانون</p>", content.Text())

	for _, path := range []string{"/missing", "/broken"} {
		t.Run(path, func(t *testing.T) {
			_, err := f.Fetch(ctx, srv.URL+path)
			require.Error(t, err)
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.GreaterOrEqual(t, statusErr.StatusCode, 400)
		})
	}
}

func TestFetcher_MaxContentSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size := 4096
		if r.URL.Path == "/exact" {
			size = 1024
		}
		w.Write(make([]byte, size))
	}))
	defer srv.Close()

	f := New(&Config{UserAgent: "test", Timeout: time.Second, MaxContentSize: 1024})

	content, err := f.Fetch(context.Background(), srv.URL+"/oversized")
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, content)

	content, err = f.Fetch(context.Background(), srv.URL+"/exact")
	require.NoError(t, err)
	assert.Len(t, content.Body, 1024)
}

func TestFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := New(&Config{UserAgent: "test", Timeout: 20 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		expected    string
	}{
		{name: "undeclared utf-8 arabic", body: []byte("قانون"), contentType: "", expected: "utf-8"},
		{name: "declared latin-1 but valid utf-8", body: []byte("قانون"), contentType: "text/html; charset=ISO-8859-1", expected: "utf-8"},
		{name: "declared windows-1256", body: []byte{0xe1, 0xc7}, contentType: "text/html; charset=windows-1256", expected: "windows-1256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.body, tt.contentType))
		})
	}
}

func TestFetchedContent_Text_Windows1256(t *testing.T) {
	// "قانون" in windows-1256
	body := []byte{0xde, 0xc7, 0xe4, 0xe6, 0xe4}
	content := &FetchedContent{Body: body, Encoding: "windows-1256"}
	assert.Equal(t, "قانون", content.Text())
}
