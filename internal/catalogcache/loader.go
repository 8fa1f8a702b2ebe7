package catalogcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/honeycombo/combo-service/internal/catalog"
	"github.com/honeycombo/combo-service/internal/parsers/csv"
	"github.com/honeycombo/combo-service/internal/parsers/xlsx"
	"github.com/honeycombo/combo-service/internal/types"
)

// loaderOptions are shared by the file and URL loaders.
type loaderOptions struct {
	csvOptions  csv.CsvParserOptions
	xlsxOptions xlsx.XlsxParserOptions
	concurrency int
}

func newLoaderOptions(opts []LoaderOption) loaderOptions {
	o := loaderOptions{
		csvOptions:  csv.DefaultOptions(),
		xlsxOptions: xlsx.DefaultOptions(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoaderOption configures a FileLoader or URLLoader.
type LoaderOption func(*loaderOptions)

// WithCSVOptions overrides the CSV parser options.
func WithCSVOptions(opts csv.CsvParserOptions) LoaderOption {
	return func(o *loaderOptions) { o.csvOptions = opts }
}

// WithXLSXOptions overrides the XLSX parser options.
func WithXLSXOptions(opts xlsx.XlsxParserOptions) LoaderOption {
	return func(o *loaderOptions) { o.xlsxOptions = opts }
}

// WithConcurrency limits how many sources are parsed at once.
func WithConcurrency(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func (o loaderOptions) parse(kind types.FileType, content []byte) (*types.ParseResult, error) {
	switch kind {
	case types.FileTypeCSV:
		return csv.NewParser(o.csvOptions).Parse(content)
	case types.FileTypeXLSX:
		return xlsx.NewParser(o.xlsxOptions).Parse(content)
	}
	return nil, fmt.Errorf("unsupported file type %q", kind)
}

// parseAll runs fetch for every source with bounded concurrency and keeps
// results in source order.
func (o loaderOptions) parseAll(ctx context.Context, sources []string, fetch func(context.Context, string) (*types.ParseResult, error)) ([]*types.ParseResult, error) {
	results := make([]*types.ParseResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fetch(gctx, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildCatalog normalizes parsed rows into a snapshot. Rows that fail
// normalization are logged and skipped.
func buildCatalog(results []*types.ParseResult, source string, logger *zerolog.Logger) (*catalog.Catalog, error) {
	var rows []types.RawItem
	rowErrors := 0
	for _, res := range results {
		rows = append(rows, res.Rows...)
		rowErrors += len(res.Errors)
	}

	items, normErrs := catalog.NormalizeAll(rows)
	for _, e := range normErrs {
		logger.Debug().Err(e).Msg("Skipping catalog row")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no usable items in %s", source)
	}

	cat := catalog.New(items, source)
	logger.Info().
		Str("source", source).
		Int("files", len(results)).
		Int("rows", len(rows)).
		Int("row_errors", rowErrors+len(normErrs)).
		Int("items", cat.Len()).
		Msg("Loaded catalog")
	return cat, nil
}

// FileLoader loads a catalog from a CSV/XLSX file or a directory of them.
type FileLoader struct {
	path   string
	opts   loaderOptions
	logger *zerolog.Logger
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string, opts ...LoaderOption) *FileLoader {
	logger := log.With().Str("component", "file_loader").Logger()
	return &FileLoader{
		path:   path,
		opts:   newLoaderOptions(opts),
		logger: &logger,
	}
}

// Load parses every catalog file under the loader's path.
func (l *FileLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	files, err := CatalogFiles(l.path)
	if err != nil {
		return nil, err
	}
	results, err := l.opts.parseAll(ctx, files, func(_ context.Context, file string) (*types.ParseResult, error) {
		res, err := l.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return buildCatalog(results, "file:"+l.path, l.logger)
}

// ParseFile parses a single catalog file by extension.
func (l *FileLoader) ParseFile(path string) (*types.ParseResult, error) {
	kind := fileType(path)
	if kind == "" {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.opts.parse(kind, content)
}

// CatalogFiles resolves path to the sorted list of catalog files it names.
func CatalogFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if fileType(e.Name()) != "" {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .csv or .xlsx files in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

func fileType(name string) types.FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return types.FileTypeCSV
	case ".xlsx":
		return types.FileTypeXLSX
	}
	return ""
}

// ItemLister is the read side of the catalog repository.
type ItemLister interface {
	ListItems(ctx context.Context) ([]catalog.Item, error)
}

// PostgresLoader loads the catalog from the database.
type PostgresLoader struct {
	repo ItemLister
}

// NewPostgresLoader creates a loader over repo.
func NewPostgresLoader(repo ItemLister) *PostgresLoader {
	return &PostgresLoader{repo: repo}
}

// Load reads every stored item.
func (l *PostgresLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	items, err := l.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog table is empty")
	}
	return catalog.New(items, "postgres"), nil
}
