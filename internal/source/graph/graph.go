// Package graph fetches the expense workbook from OneDrive through the
// Microsoft Graph API. The workbook endpoint returns the used range as a
// formatted text matrix, so no Excel decoding happens in-process.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"

	"homespend/internal/core"
	"homespend/internal/source"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Scopes requested from the Microsoft identity platform. offline_access is
// required for refresh tokens.
var Scopes = []string{"offline_access", "Files.Read", "User.Read"}

type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	TokenFile    string
	FilePath     string
	Worksheet    string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	filePath   string
	worksheet  string
}

var _ source.TableFetcher = (*Client)(nil)

// OAuthConfig builds the authorization-code configuration for the Microsoft
// identity platform. Shared with the token bootstrap command.
func OAuthConfig(clientID, clientSecret, tenantID string) *oauth2.Config {
	if tenantID == "" {
		tenantID = "common"
	}
	authority := "https://login.microsoftonline.com/" + tenantID
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authority + "/oauth2/v2.0/authorize",
			TokenURL: authority + "/oauth2/v2.0/token",
		},
	}
}

// New creates a Graph client from a previously bootstrapped token file. The
// underlying HTTP client refreshes the token transparently; run oauth-init
// first when no token exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("missing Microsoft client ID")
	}
	if cfg.FilePath == "" {
		return nil, errors.New("missing OneDrive file path")
	}
	if cfg.Worksheet == "" {
		cfg.Worksheet = "Sheet1"
	}

	tok, err := TokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load token (run oauth-init first): %w", err)
	}

	oauthCfg := OAuthConfig(cfg.ClientID, cfg.ClientSecret, cfg.TenantID)
	return &Client{
		httpClient: oauthCfg.Client(ctx, tok),
		baseURL:    defaultBaseURL,
		filePath:   cfg.FilePath,
		worksheet:  cfg.Worksheet,
	}, nil
}

// newWithHTTPClient wires an explicit HTTP client and base URL, for tests.
func newWithHTTPClient(httpClient *http.Client, baseURL, filePath, worksheet string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		filePath:   filePath,
		worksheet:  worksheet,
	}
}

// Name implements source.Name.
func (c *Client) Name() string {
	return "graph"
}

// FileExists checks the drive item metadata for the configured path.
func (c *Client) FileExists(ctx context.Context) (bool, error) {
	u := c.baseURL + "/me/drive/root:/" + escapePath(c.filePath)
	resp, err := c.get(ctx, u)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp)
	}
}

// FetchTable reads the worksheet's used range as a raw table. Transient
// Graph failures (throttling, 5xx) are retried with a flat delay; anything
// else surfaces immediately.
func (c *Client) FetchTable(ctx context.Context) (core.RawTable, error) {
	u := fmt.Sprintf("%s/me/drive/root:/%s:/workbook/worksheets('%s')/usedRange?$select=text",
		c.baseURL, escapePath(c.filePath), url.PathEscape(c.worksheet))

	var table core.RawTable
	err := retry.Do(
		func() error {
			resp, err := c.get(ctx, u)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return statusError(resp)
			}
			parsed, err := parseUsedRange(resp.Body)
			if err != nil {
				return err
			}
			table = parsed
			return nil
		},
		retry.RetryIf(func(err error) bool {
			var httpErr *httpStatusError
			if errors.As(err, &httpErr) && httpErr.retryable() {
				slog.WarnContext(ctx, "Graph request throttled or failing, will retry",
					"status", httpErr.Code, "path", c.filePath)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("fetch workbook range: %w", err)
	}
	return table, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	return resp, nil
}

// parseUsedRange decodes a workbook range payload into a raw table. The
// text matrix carries the formatted cell values; the first row is the
// header row.
func parseUsedRange(r io.Reader) (core.RawTable, error) {
	var payload struct {
		Text [][]interface{} `json:"text"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return core.RawTable{}, fmt.Errorf("decode workbook range: %w", err)
	}
	return source.TableFromValues(payload.Text), nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("graph API status %d: %s", e.Code, e.Body)
}

func (e *httpStatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// escapePath URL-escapes each segment of a drive path, keeping separators.
func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// TokenFromFile loads a stored OAuth token.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return tok, nil
}

// SaveToken persists an OAuth token for later runs.
func SaveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return nil
}
