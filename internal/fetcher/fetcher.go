// Package fetcher downloads and parses bulk data from HTTP, FTP, CSV, XML,
// JSON, and ZIP sources.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ForURL returns an HTTP or FTP fetcher depending on the URL scheme. The FEC
// publishes bulk files over both.
func ForURL(rawURL string, httpFetcher *HTTPFetcher, ftpFetcher *FTPFetcher) Fetcher {
	if len(rawURL) >= 6 && rawURL[:6] == "ftp://" {
		return ftpFetcher
	}
	return httpFetcher
}
