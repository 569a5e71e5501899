package oculus

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	profileURL     = "https://secure.oculus.com/my/profile/"
	graphURL       = "https://graph.oculus.com/graphql?locale=en_US"
	ocapiURL       = "https://www.meta.com/ocapi/graphql?forced_locale=en_US"
	localeURL      = "https://www.meta.com/api/graphql/"
	metadataDocID  = "7101363079925397"
	setLocaleDocID = "5141701172554610"

	accessTokenCookie = "oc_ac_at"
)

// GraphQLClient talks to the unofficial graph endpoints over plain HTTP,
// reusing the session cookies the store pages set. Authentication itself
// (the browser login flow) happens outside; we only read its cookie.
type GraphQLClient struct {
	http   *http.Client
	logger *log.Logger
}

func NewGraphQLClient(logger *log.Logger) (*GraphQLClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &GraphQLClient{
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

func (c *GraphQLClient) GetMetadata(ctx context.Context, appID string, setLocale bool) (string, error) {
	// visiting the store page seeds the cookies the ocapi endpoint wants
	if _, err := c.get(ctx, StoreURL(appID)); err != nil {
		return "", err
	}

	if setLocale {
		// one extra round trip so player modes and dates come back en-US
		// instead of IP-localized
		locale := url.Values{
			"variables": {`{"input":{"non_ecomm_locale":"en_US","site_type":"DOLLY","actor_id":"0","client_mutation_id":"2"}}`},
			"doc_id":    {setLocaleDocID},
		}
		if _, err := c.postForm(ctx, localeURL, locale); err != nil {
			c.logger.Printf("[oculus] set locale failed for %s: %v", appID, err)
		}
	}

	body := url.Values{
		"variables": {fmt.Sprintf(`{"itemId":%q,"hmdType":"RIFT","requestPDPAssetsAsPNG":false}`, appID)},
		"doc_id":    {metadataDocID},
	}
	return c.postForm(ctx, ocapiURL, body)
}

func (c *GraphQLClient) GetLibrary(ctx context.Context, accessToken, docID string) (string, error) {
	body := url.Values{
		"access_token": {accessToken},
		"variables":    {"{}"},
		"doc_id":       {docID},
	}
	return c.postForm(ctx, graphURL, body)
}

func (c *GraphQLClient) GetAccessToken(ctx context.Context) (string, error) {
	if _, err := c.get(ctx, profileURL); err != nil {
		return "", err
	}

	u, _ := url.Parse(profileURL)
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == accessTokenCookie && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrNotAuthenticated
}

// GetStorePage returns the raw store page HTML for the scrape fallback.
func (c *GraphQLClient) GetStorePage(ctx context.Context, appID string) (string, error) {
	return c.get(ctx, StoreURL(appID))
}

func (c *GraphQLClient) get(ctx context.Context, address string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return "", fmt.Errorf("oculus: build request: %w", err)
	}
	return c.do(req)
}

func (c *GraphQLClient) postForm(ctx context.Context, address string, values url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, address, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("oculus: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *GraphQLClient) do(req *http.Request) (string, error) {
	// the graph endpoints reject regular browser user agents
	req.Header.Set("User-Agent", "PostmanRuntime/7.35.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("oculus: request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oculus: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oculus: %s returned status %d", req.URL.Host, resp.StatusCode)
	}
	return string(body), nil
}
