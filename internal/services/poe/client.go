// Package poe talks to the Poe GraphQL endpoint used by the points history page.
package poe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/time/rate"
)

var (
	// ErrMissingCredentials is returned when the cookie or formkey is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidJSON is returned when the response body is not JSON.
	ErrInvalidJSON = errors.New("invalid JSON response")
	// ErrGraphQL is returned when the response carries a GraphQL errors array.
	ErrGraphQL = errors.New("graphql error")
	// ErrUnexpectedResponse is returned when expected fields are absent.
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)

// Node is a single points history entry.
type Node struct {
	ID           string
	BotName      string
	BotID        string
	Cursor       string
	CreationTime int64 // microseconds
	PointCost    int
}

// Record converts the node into a storable record.
func (n Node) Record() models.PointsRecord {
	return models.PointsRecord{
		ID:           n.ID,
		PointCost:    n.PointCost,
		CreationTime: n.CreationTime,
		BotName:      n.BotName,
		BotID:        n.BotID,
		Cursor:       n.Cursor,
	}
}

// HistoryPage is one page of the points history, newest first.
type HistoryPage struct {
	EndCursor   string
	Nodes       []Node
	HasNextPage bool
}

// Client issues persisted GraphQL queries against Poe.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client is never
// modified; a timeout option applies to a private copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPageInterval sets the minimum spacing between history pages.
// Zero disables pacing.
func WithPageInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates a client with a 30 second timeout and one page per second.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   config.DefaultPoeEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// WaitPage blocks until the next history page may be requested.
func (c *Client) WaitPage(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("page pacing interrupted: %w", err)
	}
	return nil
}

// PointsHistory fetches one page of the points history. An empty cursor
// requests the newest page.
func (c *Client) PointsHistory(ctx context.Context, creds models.Credentials, cursor string) (*HistoryPage, error) {
	body, err := BuildRequestBody(config.PointsHistoryQueryName, config.PointsHistoryQueryHash,
		config.PointsHistoryPageSize, cursor)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, creds, config.PointsHistoryQueryName, body)
	if err != nil {
		return nil, err
	}
	return ParseHistoryPage(resp)
}

// Settings fetches the subscription and balance information.
func (c *Client) Settings(ctx context.Context, creds models.Credentials) (*models.PointsInfo, error) {
	body, err := BuildRequestBody(config.SettingsQueryName, config.SettingsQueryHash, 0, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, creds, config.SettingsQueryName, body)
	if err != nil {
		return nil, err
	}
	return ParseSettings(resp)
}

func (c *Client) do(ctx context.Context, creds models.Credentials, queryName string, payload []byte) ([]byte, error) {
	if !creds.IsComplete() {
		return nil, ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", queryName, err)
	}
	setHeaders(req, creds, queryName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", queryName, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", queryName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed (status %d): %s", queryName, resp.StatusCode, truncate(body, 512))
	}

	logger.Debug("poe query completed", "query", queryName, "bytes", len(body))
	return body, nil
}

func setHeaders(req *http.Request, creds models.Credentials, queryName string) {
	revision := creds.Revision
	if revision == "" {
		revision = config.DefaultRevision
	}
	tagID := creds.TagID
	if tagID == "" {
		tagID = config.DefaultTagID
	}

	req.Header.Set("accept", "*/*")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("cookie", creds.Cookie)
	req.Header.Set("origin", config.PoeOrigin)
	req.Header.Set("referer", config.PoeReferer)
	req.Header.Set("user-agent", config.PoeUserAgent)
	req.Header.Set("poe-formkey", creds.FormKey)
	req.Header.Set("poe-tchannel", creds.TChannel)
	req.Header.Set("poe-revision", revision)
	req.Header.Set("poe-tag-id", tagID)
	req.Header.Set("poe-queryname", queryName)
	req.Header.Set("poegraphql", "1")
}

// BuildRequestBody builds a persisted-query payload. A limit of zero
// leaves variables empty.
func BuildRequestBody(queryName, hash string, limit int, cursor string) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "queryName", queryName)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	if body, err = sjson.SetRawBytes(body, "variables", []byte(`{}`)); err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	if limit > 0 {
		if body, err = sjson.SetBytes(body, "variables.limit", limit); err != nil {
			return nil, fmt.Errorf("failed to build request body: %w", err)
		}
	}
	if cursor != "" {
		if body, err = sjson.SetBytes(body, "variables.cursor", cursor); err != nil {
			return nil, fmt.Errorf("failed to build request body: %w", err)
		}
	}
	if body, err = sjson.SetBytes(body, "extensions.hash", hash); err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	return body, nil
}

// ParseHistoryPage extracts the nodes and page info from a history response.
func ParseHistoryPage(body []byte) (*HistoryPage, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}

	conn := root.Get("data.viewer.pointsHistoryConnection")
	if !conn.Exists() {
		return nil, fmt.Errorf("%w: pointsHistoryConnection not found", ErrUnexpectedResponse)
	}

	page := &HistoryPage{
		Nodes:       make([]Node, 0, config.PointsHistoryPageSize),
		EndCursor:   conn.Get("pageInfo.endCursor").String(),
		HasNextPage: conn.Get("pageInfo.hasNextPage").Bool(),
	}
	conn.Get("edges").ForEach(func(_, edge gjson.Result) bool {
		node := edge.Get("node")
		page.Nodes = append(page.Nodes, Node{
			ID:           node.Get("id").String(),
			PointCost:    int(node.Get("pointCost").Int()),
			CreationTime: node.Get("creationTime").Int(),
			BotName:      node.Get("bot.displayName").String(),
			BotID:        node.Get("bot.id").String(),
			Cursor:       edge.Get("cursor").String(),
		})
		return true
	})
	return page, nil
}

// ParseSettings extracts balance and subscription fields from a settings response.
func ParseSettings(body []byte) (*models.PointsInfo, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}

	viewer := root.Get("data.viewer")
	info := viewer.Get("messagePointInfo")
	if !info.Exists() {
		return nil, fmt.Errorf("%w: messagePointInfo not found", ErrUnexpectedResponse)
	}

	return &models.PointsInfo{
		SubscriptionProduct: viewer.Get("subscription.subscriptionProduct.displayName").String(),
		TotalAllotment:      info.Get("totalMessagePointAllotment").Int(),
		CurrentBalance:      info.Get("subscriptionPointBalance").Int(),
		NextGrantTime:       info.Get("computePointNextGrantTime").Int(),
		ExpiresTime:         viewer.Get("subscription.expiresTime").Int(),
	}, nil
}

func parseRoot(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrInvalidJSON, truncate(body, 128))
	}
	root := gjson.ParseBytes(body)
	if errs := root.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		msg := errs.Get("0.message").String()
		if msg == "" {
			msg = errs.Raw
		}
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrGraphQL, msg)
	}
	return root, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
