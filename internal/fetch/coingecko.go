// Package fetch retrieves one market snapshot from the CoinGecko markets
// endpoint. It is a thin wrapper: no validation happens here, the batch is
// handed to the quality inspector untouched.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"main/internal/errors"
	"main/internal/model"
	"main/pkg/exception"
)

const (
	defaultBaseURL    = "https://api.coingecko.com/api/v3"
	defaultVsCurrency = "usd"
	defaultPerPage    = 250
	defaultPage       = 1
	defaultTimeout    = 30 * time.Second
)

// Option defines snapshot source options.
type Option struct {
	BaseURL    string
	VsCurrency string
	PerPage    int
	Page       int
	Timeout    time.Duration
	Client     *http.Client
}

// Client fetches raw market snapshots.
type Client struct {
	opt  Option
	http *http.Client
}

// New creates a snapshot client from the provided options.
func New(option Option) *Client {
	if option.BaseURL == "" {
		option.BaseURL = defaultBaseURL
	}
	if option.VsCurrency == "" {
		option.VsCurrency = defaultVsCurrency
	}
	if option.PerPage <= 0 {
		option.PerPage = defaultPerPage
	}
	if option.Page <= 0 {
		option.Page = defaultPage
	}
	if option.Timeout <= 0 {
		option.Timeout = defaultTimeout
	}

	httpClient := option.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: option.Timeout}
	}

	return &Client{opt: option, http: httpClient}
}

// Fetch retrieves the latest snapshot, ordered by market cap. Records come
// back untyped; any subset or superset of the declared schema is accepted.
func (c *Client) Fetch(ctx context.Context) (model.RawBatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.marketsURL(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build snapshot request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request snapshot")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(exception.ErrUnexpectedStatus, "status %d", resp.StatusCode)
	}

	var batch model.RawBatch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, errors.Wrap(exception.ErrMalformedPayload, err.Error())
	}
	return batch, nil
}

func (c *Client) marketsURL() string {
	query := url.Values{}
	query.Set("vs_currency", c.opt.VsCurrency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(c.opt.PerPage))
	query.Set("page", strconv.Itoa(c.opt.Page))
	query.Set("sparkline", "false")
	return c.opt.BaseURL + "/coins/markets?" + query.Encode()
}
