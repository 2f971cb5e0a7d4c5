// Package audio implements the background playback path: loading an asset,
// decoding it and handing it to a host player.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"planetary_hour_notifier/internal/domain/alert"

	"github.com/spf13/afero"
)

const maxAssetSize = 16 << 20

// AssetFetcher loads assets either over HTTP or from a local asset store.
// Absolute http(s) URLs go to the network; anything else is treated as a
// path inside Fs, with Prefix stripped first ("/static/sounds/Sun.wav"
// resolves to "sounds/Sun.wav" when Prefix is "/static").
type AssetFetcher struct {
	Fs         afero.Fs
	Prefix     string
	HTTPClient *http.Client
}

func NewAssetFetcher(fs afero.Fs, prefix string) *AssetFetcher {
	return &AssetFetcher{
		Fs:         fs,
		Prefix:     prefix,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch returns the asset bytes. Every failure wraps alert.ErrAssetUnavailable.
func (f *AssetFetcher) Fetch(ctx context.Context, assetURL string) ([]byte, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad asset url %q: %v", alert.ErrAssetUnavailable, assetURL, err)
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return f.fetchHTTP(ctx, assetURL)
	}
	return f.fetchFile(u.Path)
}

func (f *AssetFetcher) fetchHTTP(ctx context.Context, assetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", alert.ErrAssetUnavailable, err)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", alert.ErrAssetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", alert.ErrAssetUnavailable, assetURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", alert.ErrAssetUnavailable, assetURL, err)
	}
	return data, nil
}

func (f *AssetFetcher) fetchFile(p string) ([]byte, error) {
	if f.Fs == nil {
		return nil, fmt.Errorf("%w: no local asset store for %s", alert.ErrAssetUnavailable, p)
	}
	clean := path.Clean("/" + p)
	if f.Prefix != "" {
		clean = strings.TrimPrefix(clean, path.Clean("/"+f.Prefix))
	}
	clean = strings.TrimPrefix(clean, "/")

	data, err := afero.ReadFile(f.Fs, clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", alert.ErrAssetUnavailable, err)
	}
	return data, nil
}
