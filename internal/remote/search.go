package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// SearchResult is one server-side page of levels.
type SearchResult struct {
	Items []catalog.Level
	// Count is the total number of matches across all pages.
	Count int
}

type searchResponse struct {
	Items []json.RawMessage `json:"items"`
	Count int               `json:"count"`
}

type searchItem struct {
	ID          catalog.FlexID         `json:"id"`
	Artist      string                 `json:"artist"`
	Title       string                 `json:"title"`
	Name        string                 `json:"name"`
	Creator     string                 `json:"creator"`
	Description string                 `json:"description"`
	Difficulty  catalog.FlexDifficulty `json:"difficulty"`
	Tags        catalog.FlexList       `json:"tags"`
}

// SearchURL builds the search request URL. The query is lower-cased and
// form-escaped, so spaces become '+'. Page 0 is the server default and is
// not sent.
func (c *Client) SearchURL(query string, page int) string {
	var params []string
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		params = append(params, "query="+url.QueryEscape(q))
	}
	if page > 0 {
		params = append(params, "page="+strconv.Itoa(page))
	}
	u := c.url("api", "level", "search")
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}

// Search fetches one page of search results. Items that fail to parse or
// carry no usable ID are skipped.
func (c *Client) Search(ctx context.Context, query string, page int) (SearchResult, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, c.SearchURL(query, page), &resp); err != nil {
		return SearchResult{}, fmt.Errorf("searching levels: %w", err)
	}
	return SearchResult{Items: c.parseItems(resp.Items), Count: resp.Count}, nil
}

func (c *Client) parseItems(raw []json.RawMessage) []catalog.Level {
	levels := make([]catalog.Level, 0, len(raw))
	for i, msg := range raw {
		var it searchItem
		if err := json.Unmarshal(msg, &it); err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed search item")
			continue
		}
		if it.ID == "" {
			c.log.Debug().Int("index", i).Msg("skipping search item without id")
			continue
		}
		title := it.Title
		if title == "" {
			title = it.Name
		}
		levels = append(levels, catalog.Level{
			ID:          string(it.ID),
			Title:       title,
			Artist:      it.Artist,
			Creator:     it.Creator,
			Description: it.Description,
			Difficulty:  catalog.Difficulty(it.Difficulty),
			Tags:        catalog.NormalizeTags(it.Tags),
			Source:      catalog.SourceRemote,
		})
	}
	return levels
}
