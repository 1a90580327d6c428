package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
)

const (
	defaultAPIVersion           = "2024-10"
	accessTokenHeader           = "X-Shopify-Access-Token"
	responseBodyReadLimit int64 = 1024
	orderGIDPrefix              = "gid://shopify/Order/"

	// MaxNodesPerQuery is the Admin API limit on ids in one nodes(ids:) call.
	MaxNodesPerQuery = 250
)

const ordersByIDsQuery = `query getOrdersByIds($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on Order {
      id
      name
      createdAt
      currencyCode
      displayFinancialStatus
      displayFulfillmentStatus
      customAttributes { key value }
      totalPriceSet { shopMoney { amount currencyCode } }
      customer { id firstName lastName }
      lineItems(first: 50) { edges { node { id title quantity } } }
    }
  }
}`

var errAccessTokenRequired = errors.New("shopify admin access token is required")

// Client calls the Shopify Admin GraphQL API for a single shop.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a client for storeURL, which may be a bare shop host or the
// full Admin GraphQL endpoint.
func NewClient(storeURL, accessToken, apiVersion string, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}
	endpoint, err := GraphQLEndpoint(storeURL, apiVersion)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		endpoint:    endpoint,
		accessToken: token,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// GraphQLEndpoint normalizes a store URL into the Admin GraphQL endpoint.
// URLs that already carry a path are used as given.
func GraphQLEndpoint(storeURL, apiVersion string) (string, error) {
	raw := strings.TrimSpace(storeURL)
	if raw == "" {
		return "", errors.New("shopify store url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid shopify store url %q", storeURL)
	}
	if strings.Trim(u.Path, "/") != "" {
		return u.String(), nil
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = defaultAPIVersion
	}
	u.Path = fmt.Sprintf("/admin/api/%s/graphql.json", apiVersion)
	return u.String(), nil
}

// OrderGID converts a numeric order id into its GraphQL global id.
func OrderGID(orderID string) string {
	if strings.HasPrefix(orderID, "gid://") {
		return orderID
	}
	return orderGIDPrefix + orderID
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// FetchOrders loads orders by id. Unknown ids and non-order nodes are skipped.
func (c *Client) FetchOrders(ctx context.Context, orderIDs []string) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, OrderGID(trimmed))
		}
	}

	orders := make([]Order, 0, len(ids))
	for start := 0; start < len(ids); start += MaxNodesPerQuery {
		end := min(start+MaxNodesPerQuery, len(ids))

		var data struct {
			Nodes []*Order `json:"nodes"`
		}
		if err := c.do(ctx, graphQLRequest{Query: ordersByIDsQuery, Variables: map[string]any{"ids": ids[start:end]}}, &data); err != nil {
			return nil, err
		}
		for _, node := range data.Nodes {
			if node == nil || node.ID == "" {
				continue
			}
			orders = append(orders, *node)
		}
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, reqBody graphQLRequest, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal shopify graphql request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build shopify graphql request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(accessTokenHeader, c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute shopify graphql request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "shopify graphql request failed")
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shopify graphql response")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; ")), "shopify graphql returned no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shopify graphql data")
	}
	return nil
}
