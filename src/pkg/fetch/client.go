// Package fetch retrieves raw sales orders from the remote sales API.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/sales"
	"sales-report/src/pkg/util"
)

// ErrFetch is wrapped by every error FetchSales returns.
var ErrFetch = errors.New("fetch sales data")

// Params is the inclusive date range to fetch, as YYYY-MM-DD strings.
type Params struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Validate checks both dates are YYYY-MM-DD and StartDate is not after EndDate.
func (p Params) Validate() error {
	start, err := util.ParseDay(p.StartDate)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	end, err := util.ParseDay(p.EndDate)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", p.StartDate, p.EndDate)
	}
	return nil
}

// Client talks to the sales API with a static bearer token.
type Client struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Timeout:    timeout,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// SalesURL builds GET {base}/sales?start_date=&end_date=.
func (c *Client) SalesURL(params Params) string {
	query := url.Values{}
	query.Set("start_date", params.StartDate)
	query.Set("end_date", params.EndDate)
	return fmt.Sprintf("%s/sales?%s", strings.TrimRight(c.BaseURL, "/"), query.Encode())
}

/*
FetchSales performs GET /sales for the date range and returns the decoded orders.

The whole call, body included, is bounded by c.Timeout. Every failure wraps ErrFetch:
  - transport errors and timeouts
  - non-2xx statuses (the body is kept in the error context)
  - bodies that are not a JSON array of objects

Numbers are decoded as json.Number so no precision is lost before normalization.
*/
func (c *Client) FetchSales(ctx context.Context, params Params) (records []sales.RawOrder, e *xerr.Error) {
	validateErr := params.Validate()
	if validateErr != nil {
		e = xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, validateErr), "invalid date range", params)
		return nil, e
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	salesURL := c.SalesURL(params)
	tl.Log(tl.Info, palette.Blue, "%s sales from %s to %s at '%s'", "Fetching", params.StartDate, params.EndDate, salesURL)
	startTime := time.Now()

	req, newReqErr := http.NewRequestWithContext(ctx, http.MethodGet, salesURL, nil)
	if newReqErr != nil {
		return nil, xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, newReqErr), "Failed to create HTTP request", salesURL)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	req.Header.Set("User-Agent", Cfg.UserAgent)

	resp, httpErr := c.HTTPClient.Do(req)
	if httpErr != nil {
		message := "HTTP error during FetchSales"
		if errors.Is(httpErr, context.DeadlineExceeded) || isTimeout(httpErr) {
			message = fmt.Sprintf("Sales API did not answer within %s", c.Timeout)
		}
		return nil, xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, httpErr), message, map[string]any{"url": salesURL})
	}
	defer resp.Body.Close()

	respBody, e := GetBody(resp, salesURL, Cfg.MaxBodyBytes)
	if e != nil {
		return nil, e
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: status is '%s'", ErrFetch, resp.Status)
		return nil, xerr.NewError(statusErr, "API error from /sales", string(respBody))
	}

	records, decodeErr := decodeOrders(respBody)
	if decodeErr != nil {
		return nil, xerr.NewError(fmt.Errorf("%w: %w", ErrFetch, decodeErr), "Unexpected API response format", salesURL)
	}

	tl.Log(tl.Info1, palette.Green, "Fetched %v orders in %s", len(records), time.Since(startTime))
	return records, nil
}

// decodeOrders accepts only a JSON array whose elements are objects.
func decodeOrders(body []byte) (records []sales.RawOrder, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("response body is not a JSON array")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var elements []json.RawMessage
	if err = decoder.Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode JSON array: %w", err)
	}

	records = make([]sales.RawOrder, 0, len(elements))
	for index, element := range elements {
		elementDecoder := json.NewDecoder(bytes.NewReader(element))
		elementDecoder.UseNumber()

		var record sales.RawOrder
		if err = elementDecoder.Decode(&record); err != nil || record == nil {
			return nil, fmt.Errorf("element %d is not a JSON object", index)
		}
		records = append(records, record)
	}

	return records, nil
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
