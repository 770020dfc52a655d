package cijene

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ListArchives returns the available daily price archives.
func (c *Client) ListArchives(ctx context.Context) ([]Archive, error) {
	var payload archiveListResponse
	if err := c.getJSON(ctx, &url.URL{Path: archivesPath}, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Archives {
		if payload.Archives[i].URL == "" {
			payload.Archives[i].URL = c.ArchiveURL(payload.Archives[i].Date)
		}
	}
	return payload.Archives, nil
}

// ArchiveURL returns the absolute download URL of the archive for date.
func (c *Client) ArchiveURL(date string) string {
	return c.baseURL.ResolveReference(archivePath(date)).String()
}

func archivePath(date string) *url.URL {
	return &url.URL{Path: "/v0/archive/" + url.PathEscape(strings.TrimSpace(date)) + ".zip"}
}

// DownloadArchive streams the archive for date into w using the longer
// download timeout. It returns the number of bytes written.
func (c *Client) DownloadArchive(ctx context.Context, date string, w io.Writer) (int64, error) {
	date = strings.TrimSpace(date)
	if err := validateRequired(date, "date"); err != nil {
		return 0, err
	}
	if !ValidDate(date) {
		return 0, ValidationError("Date must be in YYYY-MM-DD format")
	}

	var written int64
	err := c.execute(ctx, archivePath(date), c.downloadTimeout, func(body io.Reader) error {
		n, err := io.Copy(w, body)
		written = n
		if err != nil {
			return fmt.Errorf("copy archive: %w", err)
		}
		return nil
	})
	return written, err
}

// Health reports the API's health endpoint.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var payload HealthStatus
	if err := c.getJSON(ctx, &url.URL{Path: healthPath}, &payload); err != nil {
		return HealthStatus{}, err
	}
	return payload, nil
}

// Version returns the API version, or "unknown" when the server omits it.
func (c *Client) Version(ctx context.Context) (string, error) {
	var payload versionResponse
	if err := c.getJSON(ctx, &url.URL{Path: versionPath}, &payload); err != nil {
		return "unknown", err
	}
	if strings.TrimSpace(payload.Version) == "" {
		return "unknown", nil
	}
	return payload.Version, nil
}
