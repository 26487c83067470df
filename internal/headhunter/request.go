package headhunter

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	maxErrorBody    = 512
)

// listPage is one page of a paginated hh.ru list response.
type listPage struct {
	Items   []map[string]any `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// getItems follows pagination and returns the items of every page.
func (c *Client) getItems(endpoint string, q url.Values) ([]map[string]any, error) {
	if q == nil {
		q = url.Values{}
	}

	var items []map[string]any
	for page := 0; ; page++ {
		q.Set("page", strconv.Itoa(page))

		var resp listPage
		if err := c.getJSON(endpoint, q, &resp); err != nil {
			return nil, err
		}

		items = append(items, resp.Items...)

		if resp.Page >= resp.Pages-1 {
			c.logger.Debug("got response from hh.ru", zap.Int("pages", resp.Pages), zap.Int("items", len(items)))
			return items, nil
		}
	}
}

func (c *Client) getJSON(endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return fmt.Errorf("bad status: %s: %s", resp.Status, snippet)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}
