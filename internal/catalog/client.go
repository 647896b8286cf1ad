package catalog

import (
	"context"

	"mclocale/internal/services"
)

// Getter retrieves a document body. httpfetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// Client fetches and parses catalog documents.
type Client struct {
	getter Getter
}

// NewClient wraps getter.
func NewClient(getter Getter) *Client {
	return &Client{getter: getter}
}

// BedrockSource locates the Bedrock catalog.
type BedrockSource struct {
	URL       string
	Key       string
	UserAgent string
}

// FetchBedrockDocument downloads the raw Bedrock catalog document.
func (c *Client) FetchBedrockDocument(ctx context.Context, src BedrockSource) ([]byte, error) {
	var headers map[string]string
	if src.UserAgent != "" {
		headers = map[string]string{"User-Agent": src.UserAgent}
	}
	data, err := c.getter.Get(ctx, src.URL, headers)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "catalog", "fetch bedrock catalog", "", err)
	}
	return data, nil
}

// FetchBedrock downloads and parses the Bedrock catalog.
func (c *Client) FetchBedrock(ctx context.Context, src BedrockSource) (*Catalog, error) {
	data, err := c.FetchBedrockDocument(ctx, src)
	if err != nil {
		return nil, err
	}
	return ParseBedrock(data, src.Key)
}

// FetchJavaDocument downloads the raw Java version manifest.
func (c *Client) FetchJavaDocument(ctx context.Context, url string) ([]byte, error) {
	data, err := c.getter.Get(ctx, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "catalog", "fetch java manifest", "", err)
	}
	return data, nil
}

// FetchJavaManifest downloads and parses the Java version manifest.
func (c *Client) FetchJavaManifest(ctx context.Context, url string) (*JavaManifest, error) {
	data, err := c.FetchJavaDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseJavaManifest(data)
}
