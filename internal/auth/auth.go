package auth

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"
)

// TokenSource yields a valid bearer token for one carrier API.
type TokenSource interface {
    Token(ctx context.Context) (string, error)
}

// TokenCache stores fetched tokens until shortly before expiry.
// Implementations must tolerate concurrent use.
type TokenCache interface {
    Get(ctx context.Context, key string) (string, bool)
    Set(ctx context.Context, key, token string, ttl time.Duration)
}

// ErrTokenRequest is returned when the carrier's OAuth endpoint rejects
// the client-credentials grant.
var ErrTokenRequest = errors.New("token request failed")

// Tokens are renewed five minutes before the carrier-reported expiry.
const expirySkew = 5 * time.Minute

// ClientCredentials fetches OAuth tokens via the client-credentials
// grant and caches them under shipvox:token:<carrier>. FedEx takes the
// credentials as form fields; UPS wants HTTP basic auth.
type ClientCredentials struct {
    httpClient   *http.Client
    tokenURL     string
    clientID     string
    clientSecret string
    basicAuth    bool
    cacheKey     string
    cache        TokenCache
}

func NewClientCredentials(carrier, tokenURL, clientID, clientSecret string, basicAuth bool, cache TokenCache) *ClientCredentials {
    if cache == nil {
        cache = NewMemoryCache()
    }
    return &ClientCredentials{
        httpClient:   &http.Client{Timeout: 30 * time.Second},
        tokenURL:     tokenURL,
        clientID:     clientID,
        clientSecret: clientSecret,
        basicAuth:    basicAuth,
        cacheKey:     "shipvox:token:" + strings.ToLower(carrier),
        cache:        cache,
    }
}

func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
    if tok, ok := c.cache.Get(ctx, c.cacheKey); ok {
        return tok, nil
    }

    form := url.Values{}
    form.Set("grant_type", "client_credentials")
    if !c.basicAuth {
        form.Set("client_id", c.clientID)
        form.Set("client_secret", c.clientSecret)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    if c.basicAuth {
        req.SetBasicAuth(c.clientID, c.clientSecret)
    }

    resp, err := c.httpClient.Do(req)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(resp.Body)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
    }
    if resp.StatusCode != http.StatusOK {
        return "", fmt.Errorf("%w: status %d: %s", ErrTokenRequest, resp.StatusCode, body)
    }

    var tr struct {
        AccessToken string          `json:"access_token"`
        ExpiresIn   json.RawMessage `json:"expires_in"`
    }
    if err := json.Unmarshal(body, &tr); err != nil {
        return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
    }
    if tr.AccessToken == "" {
        return "", fmt.Errorf("%w: response has no access_token", ErrTokenRequest)
    }

    if ttl := time.Duration(parseExpiresIn(tr.ExpiresIn))*time.Second - expirySkew; ttl > 0 {
        c.cache.Set(ctx, c.cacheKey, tr.AccessToken, ttl)
    }
    return tr.AccessToken, nil
}

// parseExpiresIn accepts both numeric and quoted expires_in values; UPS
// returns the field as a string. Unparseable values default to one hour.
func parseExpiresIn(raw json.RawMessage) int {
    s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
    if n, err := strconv.Atoi(s); err == nil && n > 0 {
        return n
    }
    return 3600
}
