package catalogcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fetch "github.com/honeycombo/combo-service/internal/http"
	"github.com/honeycombo/combo-service/internal/http/ratelimit"
	"github.com/honeycombo/combo-service/internal/types"
)

func testFetcher() *fetch.Client {
	return fetch.NewClient(ratelimit.Config{
		RequestsPerSecond: 100,
		MaxRetries:        1,
		InitialBackoffMs:  1,
		MaxBackoffMs:      5,
	})
}

func TestURLLoader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cu.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("brand,name,price,event\nCU,참치마요 삼각김밥,1500,1+1\nCU,코카콜라 500ml,2000,2+1\n"))
	})
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("brand,name,price,event\nGS25,제주삼다수 2L,1100,2+1\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	loader := NewURLLoader([]string{srv.URL + "/cu.csv", srv.URL + "/export"}, testFetcher())
	cat, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"CU", "GS25"}, cat.Brands())
	assert.Contains(t, cat.Source, "(+1)")
}

func TestURLLoaderFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.csv":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("???"))
		}
	}))
	defer srv.Close()

	_, err := NewURLLoader(nil, testFetcher()).Load(context.Background())
	assert.Error(t, err)

	_, err = NewURLLoader([]string{srv.URL + "/missing.csv"}, testFetcher()).Load(context.Background())
	var fetchErr *ratelimit.FetchRetryError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.LastStatus)

	_, err = NewURLLoader([]string{srv.URL + "/blob"}, testFetcher()).Load(context.Background())
	assert.ErrorContains(t, err, "cannot tell file type")
}

func TestRemoteFileType(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        types.FileType
	}{
		{"https://example.com/a/cu.CSV?x=1", "", types.FileTypeCSV},
		{"https://example.com/gs25.xlsx", "application/octet-stream", types.FileTypeXLSX},
		{"https://example.com/export", "text/csv; charset=euc-kr", types.FileTypeCSV},
		{"https://example.com/export", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", types.FileTypeXLSX},
		{"https://example.com/export", "application/json", ""},
		{"https://example.com/export", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, remoteFileType(tt.url, tt.contentType), tt.url+" "+tt.contentType)
	}
}
