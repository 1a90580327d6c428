package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashcorp/wishlist-backend/pkg/config"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
)

const testCollectionID = "5f0c7a0e-8d8c-4e47-9b1e-4a5b8f2c9d10"

func TestUpdateCollectionMapsBody(t *testing.T) {
	svc := &stubWishlistService{}
	body := []byte(`{
		"wishlist_id": "7001",
		"title": "Wedding",
		"public": false,
		"expiry_date": "2026-12-31T00:00:00Z",
		"delivery_address": {"address": "1 Main Rd", "city": "Cape Town", "postcode": "8001", "phone": "0210000000"}
	}`)
	rec := httptest.NewRecorder()
	UpdateCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodPut, "/collection/"+testCollectionID, body,
		map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.updateCollection
	if svc.collectionID != testCollectionID || in.WishlistID != "7001" {
		t.Fatalf("unexpected ids collection=%q wishlist=%q", svc.collectionID, in.WishlistID)
	}
	if in.Title == nil || *in.Title != "Wedding" {
		t.Fatalf("expected title Wedding got %v", in.Title)
	}
	if in.Public == nil || *in.Public {
		t.Fatalf("expected public=false got %v", in.Public)
	}
	want := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	if !in.ExpiryDate.Set || in.ExpiryDate.Value == nil || !in.ExpiryDate.Value.Equal(want) {
		t.Fatalf("unexpected expiry %+v", in.ExpiryDate)
	}
	if in.DeliveryAddress == nil || in.DeliveryAddress.City != "Cape Town" || in.DeliveryAddress.Address != "1 Main Rd" {
		t.Fatalf("unexpected delivery address %+v", in.DeliveryAddress)
	}
}

func TestUpdateCollectionLeavesAbsentFieldsUnset(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	UpdateCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodPut, "/collection/"+testCollectionID,
		[]byte(`{"wishlist_id":"7001","expiry_date":null}`), map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	in := svc.updateCollection
	if in.Title != nil || in.Public != nil || in.DeliveryAddress != nil {
		t.Fatalf("expected absent fields to stay nil, got %+v", in)
	}
	if !in.ExpiryDate.Set || in.ExpiryDate.Value != nil {
		t.Fatalf("expected explicit null expiry, got %+v", in.ExpiryDate)
	}
}

func TestUpdateCollectionRequiresWishlistID(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	UpdateCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodPut, "/collection/"+testCollectionID,
		[]byte(`{"title":"Wedding"}`), map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.collectionID != "" {
		t.Fatal("service should not be called without wishlist_id")
	}
}

func TestDeleteCollectionOwnerFromQuery(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	DeleteCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/collection/"+testCollectionID+"?wishlist_id=7001", nil,
		map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.wishlistID != "7001" || svc.collectionID != testCollectionID {
		t.Fatalf("unexpected call wishlist=%q collection=%q", svc.wishlistID, svc.collectionID)
	}
}

func TestDeleteCollectionOwnerFromBody(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	DeleteCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/collection/"+testCollectionID,
		[]byte(`{"wishlist_id":"7002"}`), map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.wishlistID != "7002" {
		t.Fatalf("expected wishlist 7002 got %q", svc.wishlistID)
	}
}

func TestDeleteCollectionQueryWinsOverBody(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	DeleteCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/collection/"+testCollectionID+"?wishlist_id=7001",
		[]byte(`{"wishlist_id":"7002"}`), map[string]string{"collectionId": testCollectionID}))

	if svc.wishlistID != "7001" {
		t.Fatalf("expected query wishlist 7001 got %q", svc.wishlistID)
	}
}

func TestDeleteCollectionRequiresOwner(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	DeleteCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/collection/"+testCollectionID, nil,
		map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %q", code)
	}
}

func TestAddProductForwardsInput(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	AddProduct(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/collection/"+testCollectionID+"/product",
		[]byte(`{"wishlist_id":"7001","product_id":"8001","title":"Scarf","description":"Silk","quantity":3}`),
		map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.wishlistID != "7001" || svc.addProduct.ProductID != "8001" || svc.addProduct.Description != "Silk" || svc.addProduct.Quantity != 3 {
		t.Fatalf("unexpected add product call wishlist=%q input=%+v", svc.wishlistID, svc.addProduct)
	}
}

func TestAddProductConflict(t *testing.T) {
	svc := &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeConflict, "Product already exists in this collection")}
	rec := httptest.NewRecorder()
	AddProduct(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/collection/"+testCollectionID+"/product",
		[]byte(`{"wishlist_id":"7001","product_id":"8001"}`), map[string]string{"collectionId": testCollectionID}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestUpdateProductVariantForwardsIDs(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	UpdateProductVariant(svc, nil).ServeHTTP(rec, newRequest(http.MethodPut, "/collection/"+testCollectionID+"/product/8001/variant",
		[]byte(`{"wishlist_id":"7001","variant_id":9001}`),
		map[string]string{"collectionId": testCollectionID, "productId": "8001"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.productID != "8001" || svc.variantID != "9001" || svc.wishlistID != "7001" {
		t.Fatalf("unexpected variant call product=%q variant=%q wishlist=%q", svc.productID, svc.variantID, svc.wishlistID)
	}
}

func TestRemoveProductOwnerFromBody(t *testing.T) {
	svc := &stubWishlistService{}
	rec := httptest.NewRecorder()
	RemoveProduct(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/collection/"+testCollectionID+"/product/8001",
		[]byte(`{"wishlist_id":"7001"}`), map[string]string{"collectionId": testCollectionID, "productId": "8001"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.productID != "8001" || svc.wishlistID != "7001" {
		t.Fatalf("unexpected remove call product=%q wishlist=%q", svc.productID, svc.wishlistID)
	}
}

func TestGetSharedCollectionNotFound(t *testing.T) {
	svc := &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Collection not found or link expired/unavailable")}
	rec := httptest.NewRecorder()
	GetSharedCollection(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/share/share_ABC", nil, map[string]string{"shareId": "share_ABC"}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.shareID != "share_ABC" {
		t.Fatalf("expected share id share_ABC got %q", svc.shareID)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"database": fakePinger{}}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"database": fakePinger{}, "redis": fakePinger{err: errors.New("down")}}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
