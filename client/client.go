package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/openprofile/openprofile"
)

const (
	defaultTimeout = 3 * time.Second
	wellKnownPath  = "/.well-known/openprofile"
)

// Client fetches node descriptors from federation peers, with a
// positive cache to spare repeated well-known round trips.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
}

func New(userAgent string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		userAgent: userAgent,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// GetWellKnown resolves a peer's node descriptor.
func (c *Client) GetWellKnown(ctx context.Context, domain string) (openprofile.WellKnownProfile, error) {
	if domain == "" {
		return openprofile.WellKnownProfile{}, fmt.Errorf("domain cannot be empty")
	}

	cacheKey := "wellknown:" + domain
	if x, found := c.cache.Get(cacheKey); found {
		return x.(openprofile.WellKnownProfile), nil
	}

	url := "https://" + domain + wellKnownPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return openprofile.WellKnownProfile{}, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return openprofile.WellKnownProfile{}, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return openprofile.WellKnownProfile{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var wkp openprofile.WellKnownProfile
	err = json.NewDecoder(resp.Body).Decode(&wkp)
	if err != nil {
		return openprofile.WellKnownProfile{}, fmt.Errorf("failed to decode well-known response: %v", err)
	}

	c.cache.Set(cacheKey, wkp, cache.DefaultExpiration)

	return wkp, nil
}
