package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1/"
	// EnvAPIKeysSecretARN names the env var with the API keys secret ARN.
	EnvAPIKeysSecretARN = "LLM_API_KEYS_SECRET_ARN"

	apiKeyField       = "OPENAI"
	defaultTimeout    = 300 * time.Second
	defaultMaxRetries = 2
)

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Response is the assistant reply.
type Response struct {
	ID    string
	Model string
	// Text is the concatenated output_text of the reply.
	Text  string
	Usage Usage
}

// Decode unmarshals Text into v. Use it for schema requests.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal([]byte(r.Text), v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return nil
}

// Client calls the Responses API through openai-go.
type Client struct {
	api        openai.Client
	baseURL    string
	httpClient *http.Client
	maxRetries int
	secrets    *secrets.Cache
	keyEnvVar  string
	region     string
	apiKey     string
	logger     log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithMaxRetries sets how often the SDK retries 408, 409, 429, 5xx and
// connection errors. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithSecrets sets the cache the API key is read from.
func WithSecrets(cache *secrets.Cache) Option {
	return func(c *Client) { c.secrets = cache }
}

// WithKeySecretEnv changes the env var holding the key secret ARN.
func WithKeySecretEnv(envVar string) Option {
	return func(c *Client) { c.keyEnvVar = envVar }
}

// WithRegion sets the Secrets Manager region.
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// WithAPIKey uses a fixed key instead of Secrets Manager.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		keyEnvVar:  EnvAPIKeysSecretARN,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = log.OrNop(c.logger)

	if c.secrets == nil && c.apiKey == "" {
		c.secrets = secrets.Default()
	}

	// The API key is set per request.
	c.api = openai.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(c.maxRetries),
	)

	return c
}

// Chat sends req and returns the reply. With a ResponseSchema the reply text
// must be valid JSON.
//
// A 401 answer refreshes the key secret once before giving up.
func (c *Client) Chat(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}

	c.logger.Log(ctx, log.LevelDebug, "sending llm request",
		log.String("model", string(params.Model)),
		log.String("tag", req.billingTag()),
		log.Int("messages", len(params.Input.OfInputItemList)),
	)

	out, err := c.send(ctx, params, false)
	if err != nil && c.apiKey == "" && isStatus(err, http.StatusUnauthorized) {
		c.logger.Log(ctx, log.LevelWarn, "llm api rejected key; refreshing secret and retrying")
		out, err = c.send(ctx, params, true)
	}

	if err != nil {
		return nil, err
	}

	resp := &Response{
		ID:    out.ID,
		Model: string(out.Model),
		Text:  out.OutputText(),
		Usage: Usage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
	}

	if req.hasSchema() && !json.Valid([]byte(resp.Text)) {
		return nil, fmt.Errorf("%w: reply is not JSON", ErrInvalidResponse)
	}

	c.logger.Log(ctx, log.LevelDebug, "llm request done",
		log.String("model", resp.Model),
		log.Any("total_tokens", resp.Usage.TotalTokens),
	)

	return resp, nil
}

func (c *Client) send(ctx context.Context, params responses.ResponseNewParams, forceRefresh bool) (*responses.Response, error) {
	key, err := c.key(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	out, err := c.api.Responses.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		return nil, mapError(err)
	}

	return out, nil
}

func (c *Client) key(ctx context.Context, forceRefresh bool) (string, error) {
	if c.apiKey != "" {
		return c.apiKey, nil
	}

	secret, err := c.secrets.FromEnvARN(ctx, c.keyEnvVar, c.region, forceRefresh)
	if err != nil {
		return "", fmt.Errorf("load llm api keys: %w", err)
	}

	key := secret.String(apiKeyField)
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingAPIKey, apiKeyField)
	}

	return key, nil
}
