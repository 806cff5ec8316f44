// Package chatstream talks to a conversational-inference endpoint that
// answers a POSTed conversation with an event stream of completion deltas.
package chatstream

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/koscakluka/ema-chat/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrMissingEndpoint   = errors.New("chat endpoint is not configured")
	ErrMissingCredential = errors.New("chat endpoint credential is not configured")
	ErrInvalidEndpoint   = errors.New("chat endpoint is not a valid URL")
)

type Client struct {
	endpoint string
	apiKey   string

	httpClient *http.Client
	headers    map[string]string
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented client. The client should
// not set a Timeout, it would cut long streams short; use the request
// context instead.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHeaders adds static headers to every request. Authorization and
// Content-Type are always set by the client and cannot be overridden.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		maps.Copy(c.headers, headers)
	}
}

func NewClient(endpoint string, apiKey string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}

	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// PromptWithStream prepares a streamed completion of turns. Nothing is sent
// until the returned stream's chunks are iterated.
func (c *Client) PromptWithStream(_ context.Context, turns []llms.Turn) llms.Stream {
	return &Stream{
		client: c,
		turns:  append([]llms.Turn(nil), turns...),
	}
}
