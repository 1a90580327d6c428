package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestFetchOrdersRequest(t *testing.T) {
	respBody := `{"data":{"nodes":[
		{"id":"gid://shopify/Order/5858563227699","name":"#1001","createdAt":"2025-03-01T10:15:00Z",
		 "displayFinancialStatus":"PAID","displayFulfillmentStatus":"UNFULFILLED",
		 "customAttributes":[{"key":"wishlistShareId","value":"ABC123"}],
		 "totalPriceSet":{"shopMoney":{"amount":"1500.00","currencyCode":"ZAR"}},
		 "customer":{"id":"gid://shopify/Customer/1","firstName":"Jane","lastName":"Doe"},
		 "lineItems":{"edges":[{"node":{"id":"li1","title":"Bag","quantity":2}},{"node":{"id":"li2","title":"Hat","quantity":1}}]}},
		null
	]}}`

	var captured *http.Request
	var payload graphQLRequest
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client, err := NewClient("ashluxe.myshopify.com", "shpat_test", "2024-10", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	orders, err := client.FetchOrders(context.Background(), []string{"5858563227699", "404"})
	if err != nil {
		t.Fatalf("fetch orders: %v", err)
	}

	if got := captured.URL.String(); got != "https://ashluxe.myshopify.com/admin/api/2024-10/graphql.json" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if captured.Header.Get(accessTokenHeader) != "shpat_test" {
		t.Fatalf("access token header missing")
	}
	ids, _ := payload.Variables["ids"].([]any)
	if len(ids) != 2 || ids[0] != "gid://shopify/Order/5858563227699" {
		t.Fatalf("unexpected ids variable %+v", payload.Variables)
	}

	if len(orders) != 1 {
		t.Fatalf("expected null nodes to be skipped, got %d orders", len(orders))
	}
	order := orders[0]
	if order.Name != "#1001" || order.Attribute(ShareIDAttribute) != "ABC123" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", order.ItemCount())
	}
	if order.TotalPriceSet.ShopMoney.CurrencyCode != "ZAR" {
		t.Fatalf("unexpected money %+v", order.TotalPriceSet)
	}
}

func TestFetchOrdersNoIDsSkipsRequest(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	client, err := NewClient("ashluxe.myshopify.com", "tok", "", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	orders, err := client.FetchOrders(context.Background(), nil)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v %v", orders, err)
	}
}

func TestFetchOrdersErrors(t *testing.T) {
	cases := map[string]*http.Response{
		"status":       jsonResponse(http.StatusUnauthorized, `{"errors":"Invalid API key"}`),
		"graphql":      jsonResponse(http.StatusOK, `{"data":null,"errors":[{"message":"Throttled"}]}`),
		"malformed":    jsonResponse(http.StatusOK, `{`),
		"missing data": jsonResponse(http.StatusOK, `{"errors":[{"message":"bad query"}]}`),
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) { return resp, nil })
			client, err := NewClient("https://ashluxe.myshopify.com/admin/api/2024-10/graphql.json", "tok", "", WithHTTPClient(&http.Client{Transport: rt}))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			_, err = client.FetchOrders(context.Background(), []string{"1"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
				t.Fatalf("expected dependency error, got %v", err)
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("ashluxe.myshopify.com", " ", ""); err == nil {
		t.Fatal("expected missing token error")
	}
	if _, err := NewClient("", "tok", ""); err == nil {
		t.Fatal("expected missing store url error")
	}
}

func TestGraphQLEndpoint(t *testing.T) {
	cases := []struct {
		in, version, want string
	}{
		{"ashluxe.myshopify.com", "2024-10", "https://ashluxe.myshopify.com/admin/api/2024-10/graphql.json"},
		{"https://ashluxury.myshopify.com/", "", "https://ashluxury.myshopify.com/admin/api/2024-10/graphql.json"},
		{"https://ashluxe.myshopify.com/admin/api/2025-01/graphql.json", "2024-10", "https://ashluxe.myshopify.com/admin/api/2025-01/graphql.json"},
	}
	for _, tc := range cases {
		got, err := GraphQLEndpoint(tc.in, tc.version)
		if err != nil {
			t.Fatalf("GraphQLEndpoint(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("GraphQLEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOrderGID(t *testing.T) {
	if got := OrderGID("42"); got != "gid://shopify/Order/42" {
		t.Fatalf("unexpected gid %q", got)
	}
	if got := OrderGID("gid://shopify/Order/42"); got != "gid://shopify/Order/42" {
		t.Fatalf("gid should pass through, got %q", got)
	}
}

func TestFetchOrdersBatchesIDs(t *testing.T) {
	var batchSizes []int
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var payload graphQLRequest
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		ids, _ := payload.Variables["ids"].([]any)
		batchSizes = append(batchSizes, len(ids))
		node := `{"id":"` + ids[0].(string) + `","name":"#` + strconv.Itoa(len(batchSizes)) + `"}`
		return jsonResponse(http.StatusOK, `{"data":{"nodes":[`+node+`]}}`), nil
	})

	client, err := NewClient("ashluxe.myshopify.com", "shpat_test", "2024-10", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	orderIDs := make([]string, 600)
	for i := range orderIDs {
		orderIDs[i] = strconv.Itoa(1000 + i)
	}
	orders, err := client.FetchOrders(context.Background(), orderIDs)
	if err != nil {
		t.Fatalf("fetch orders: %v", err)
	}

	if len(batchSizes) != 3 || batchSizes[0] != MaxNodesPerQuery || batchSizes[1] != MaxNodesPerQuery || batchSizes[2] != 100 {
		t.Fatalf("unexpected batch sizes %v", batchSizes)
	}
	if len(orders) != 3 || orders[2].ID != OrderGID("1500") {
		t.Fatalf("expected one order per batch in order, got %+v", orders)
	}
}
