package vcb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sig-0/vcbrates/normalize"
)

// DefaultFeedURL is the public Vietcombank rate board
const DefaultFeedURL = "https://portal.vietcombank.com.vn/Usercontrols/TVPortal.TyGia/pXML.aspx?b=10"

// maxFeedSize caps the rate board body, which is a few kilobytes in practice
const maxFeedSize = 4 << 20

var ErrStatusCode = errors.New("invalid status code received")

// Client downloads and decodes the bank rate board
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a new rate board client for the given URL
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// URL returns the rate board URL
func (c *Client) URL() string {
	return c.url
}

// FetchFeed downloads and decodes the rate board
func (c *Client) FetchFeed(ctx context.Context) (*Feed, error) {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("Accept", "application/xml, text/xml")

	// Execute the request
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrStatusCode, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read rate board: %w", err)
	}

	feed, err := decodeFeed(b, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("unable to decode rate board: %w", err)
	}

	return feed, nil
}

// FetchRecords returns the raw rate board records, in board order
func (c *Client) FetchRecords(ctx context.Context) ([]normalize.RawRecord, error) {
	feed, err := c.FetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	return feed.Records, nil
}
