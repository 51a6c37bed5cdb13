// Package httpc is the HTTP transport used to reach the backend JSON-RPC style API and third party GraphQL endpoints.
//
// Every call follows the null policy of the explorer: transport failures and non-2xx replies are returned as errors
// wrapping ErrTransport and callers treat them as "no data".
package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Errors returned.
var (
	ErrTransport = errors.New("httpc: transport failure")
	ErrGraphQL   = errors.New("httpc: graphql errors in response")
)

// Client wraps a resty client configured with a timeout and JSON headers.
type Client struct {
	r *resty.Client
}

// New returns a Client with the given request timeout.
func New(timeout time.Duration) *Client {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{r: r}
}

// graphQLReq is the body of a GraphQL POST.
type graphQLReq struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLRes is the envelope of a GraphQL reply.
type graphQLRes struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQL posts a raw query to url and decodes its data member into out.
func (c *Client) GraphQL(ctx context.Context, url, query string, vars map[string]interface{}, out interface{}) error {
	var res graphQLRes

	if err := c.post(ctx, url, graphQLReq{Query: query, Variables: vars}, &res); err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrGraphQL, res.Errors[0].Message)
	}

	if out == nil || len(res.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.Data, out); err != nil {
		return fmt.Errorf("httpc: decoding graphql data: %w", err)
	}

	return nil
}

// Call posts {method, ...params} to the backend endpoint url and decodes the reply into out. Replies shaped as
// {"error": ...} are reported as transport failures.
func (c *Client) Call(ctx context.Context, url, method string, params map[string]interface{}, out interface{}) error {
	body := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		body[k] = v
	}

	body["method"] = method

	var raw json.RawMessage
	if err := c.post(ctx, url, body, &raw); err != nil {
		return err
	}

	var e struct {
		Error interface{} `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != nil && e.Error != false {
		return fmt.Errorf("%w: %s: %v", ErrTransport, method, e.Error)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpc: decoding %s reply: %w", method, err)
	}

	return nil
}

// Get requests url with the query parameters and decodes the JSON reply into out.
func (c *Client) Get(ctx context.Context, url string, query map[string]string, out interface{}) error {
	res, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrTransport, url, err)
	}

	if res.IsError() {
		return fmt.Errorf("%w: GET %s: status %d", ErrTransport, url, res.StatusCode())
	}

	return decode(res.Body(), out)
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	res, err := c.r.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrTransport, url, err)
	}

	if res.IsError() {
		return fmt.Errorf("%w: POST %s: status %d", ErrTransport, url, res.StatusCode())
	}

	return decode(res.Body(), out)
}

// decode unmarshals a reply body, which may come without a JSON content type.
func decode(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding reply: %v", ErrTransport, err)
	}

	return nil
}
