package catalogcache

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/honeycombo/combo-service/internal/catalog"
	"github.com/honeycombo/combo-service/internal/types"
)

// Fetcher downloads a remote catalog export.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, string, error)
}

// URLLoader loads a catalog from remote CSV/XLSX exports.
type URLLoader struct {
	urls    []string
	fetcher Fetcher
	opts    loaderOptions
	logger  *zerolog.Logger
}

// NewURLLoader creates a loader over urls.
func NewURLLoader(urls []string, fetcher Fetcher, opts ...LoaderOption) *URLLoader {
	logger := log.With().Str("component", "url_loader").Logger()
	return &URLLoader{
		urls:    urls,
		fetcher: fetcher,
		opts:    newLoaderOptions(opts),
		logger:  &logger,
	}
}

// Load downloads and parses every export. One failed download fails the
// load so a partial catalog never replaces a complete one.
func (l *URLLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	if len(l.urls) == 0 {
		return nil, fmt.Errorf("no catalog urls configured")
	}
	results, err := l.opts.parseAll(ctx, l.urls, l.fetch)
	if err != nil {
		return nil, err
	}
	source := "url:" + l.urls[0]
	if len(l.urls) > 1 {
		source = fmt.Sprintf("url:%s(+%d)", l.urls[0], len(l.urls)-1)
	}
	return buildCatalog(results, source, l.logger)
}

func (l *URLLoader) fetch(ctx context.Context, rawURL string) (*types.ParseResult, error) {
	content, contentType, err := l.fetcher.GetBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	kind := remoteFileType(rawURL, contentType)
	if kind == "" {
		return nil, fmt.Errorf("%s: cannot tell file type from path or content type %q", rawURL, contentType)
	}
	l.logger.Debug().Str("url", rawURL).Str("type", string(kind)).Int("bytes", len(content)).Msg("Fetched catalog export")
	res, err := l.opts.parse(kind, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return res, nil
}

// remoteFileType prefers the URL path extension and falls back to the
// response content type.
func remoteFileType(rawURL, contentType string) types.FileType {
	if u, err := url.Parse(rawURL); err == nil {
		if kind := fileType(path.Base(u.Path)); kind != "" {
			return kind
		}
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case mediaType == "text/csv", mediaType == "application/csv":
		return types.FileTypeCSV
	case mediaType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return types.FileTypeXLSX
	case strings.HasPrefix(mediaType, "text/plain"):
		return types.FileTypeCSV
	}
	return ""
}
