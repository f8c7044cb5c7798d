package directory

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Downloader fetches GTFS feed archives.
type Downloader struct {
	client *http.Client
	dir    string // Directory to store downloaded files
	logger *slog.Logger
}

// NewDownloader creates a Downloader that stores archives in dir.
func NewDownloader(dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{},
		dir:    dir,
		logger: logger,
	}
}

// Download fetches the GTFS zip at url and saves it to a temp file in the
// download directory. The caller removes the file.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	d.logger.Info("downloading GTFS feed", "url", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(d.dir, "gtfs-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmpFile.Close()

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("write file: %w", err)
	}

	d.logger.Info("GTFS feed downloaded",
		"path", filepath.Base(tmpFile.Name()),
		"size_mb", fmt.Sprintf("%.1f", float64(written)/(1024*1024)),
	)
	return tmpFile.Name(), nil
}

// Import builds a directory from a GTFS feed. source is either an http(s)
// URL, which is downloaded first, or a local zip path.
func (d *Downloader) Import(ctx context.Context, source string) (*Directory, error) {
	path := source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		p, err := d.Download(ctx, source)
		if err != nil {
			return nil, err
		}
		defer os.Remove(p)
		path = p
	}
	return ReadGTFSZip(path)
}

// ReadGTFSZip reads stops.txt from a GTFS zip archive.
func ReadGTFSZip(path string) (*Directory, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != "stops.txt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open stops.txt: %w", err)
		}
		defer rc.Close()
		return ParseGTFSStops(rc)
	}
	return nil, fmt.Errorf("%s: no stops.txt in archive", filepath.Base(path))
}

// WriteYAML writes the directory as a name: id mapping in directory order,
// readable by ParseYAML.
func (d *Directory) WriteYAML(w io.Writer) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range d.entries {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.ID, Style: yaml.DoubleQuotedStyle},
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	return enc.Close()
}
