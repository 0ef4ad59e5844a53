package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// Loader implements module.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ module.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options module.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source.
func (l *Loader) Load(ctx context.Context, src module.Source) (module.Document, error) {
	if src == nil {
		return module.Document{}, errors.New("module loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case module.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case module.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case module.SourceKindURL:
		if !l.allowHTTP {
			return module.Document{}, errors.New("module loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("module loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return module.Document{}, fmt.Errorf("module loader: load %s: %w", src.Location(), err)
	}

	return module.NewDocument(src, data)
}
