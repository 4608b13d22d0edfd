package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
)

// CoverURL returns the cover image URL for a level.
func (c *Client) CoverURL(id string) string {
	return c.url("api", "level", "cover", url.PathEscape(id)+".jpg")
}

// ArchiveURL returns the primary archive URL for a level.
func (c *Client) ArchiveURL(id string) string {
	return c.url("api", "level", "zip", url.PathEscape(id))
}

// maxCoverBytes caps cover downloads.
const maxCoverBytes = 8 << 20

// Cover downloads the raw cover image bytes.
func (c *Client) Cover(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.get(ctx, c.CoverURL(id), false)
	if err != nil {
		return nil, fmt.Errorf("fetching cover %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("fetching cover %s: %w", id, err)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("reading cover %s: %w", id, err)
	}
	return data, nil
}

// Archive is an open archive download. Size is -1 when unknown.
type Archive struct {
	URL  string
	Size int64
	Body io.ReadCloser
}

// Archive opens the level archive. When the bare ID path is missing, the
// ".zip" suffixed path is tried. The caller closes Body.
func (c *Client) Archive(ctx context.Context, id string) (*Archive, error) {
	primary := c.ArchiveURL(id)
	a, err := c.openArchive(ctx, primary)
	if errors.Is(err, ErrNotFound) {
		c.log.Debug().Str("id", id).Msg("archive not found, trying .zip path")
		a, err = c.openArchive(ctx, primary+".zip")
	}
	if err != nil {
		return nil, fmt.Errorf("downloading level %s: %w", id, err)
	}
	return a, nil
}

func (c *Client) openArchive(ctx context.Context, u string) (*Archive, error) {
	resp, err := c.get(ctx, u, false)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return &Archive{URL: u, Size: resp.ContentLength, Body: resp.Body}, nil
}
