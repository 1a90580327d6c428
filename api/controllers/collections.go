package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/api/validators"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/types"
)

type updateCollectionRequest struct {
	WishlistID      string                         `json:"wishlist_id" validate:"required"`
	Title           *string                        `json:"title"`
	Description     *string                        `json:"description"`
	Public          *bool                          `json:"public"`
	ExpiryDate      wishlist.OptionalTime          `json:"expiry_date"`
	DeliveryAddress *wishlist.DeliveryAddressInput `json:"delivery_address"`
}

type addProductRequest struct {
	WishlistID string `json:"wishlist_id" validate:"required"`
	wishlist.ProductInput
}

type updateVariantRequest struct {
	WishlistID string          `json:"wishlist_id" validate:"required"`
	VariantID  types.ShopifyID `json:"variant_id"`
}

type ownershipRequest struct {
	WishlistID string `json:"wishlist_id"`
}

func GetCollection(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		resp, err := svc.GetCollection(ctx, storefront.FromContext(ctx), chi.URLParam(r, "collectionId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// UpdateCollection edits the allow-listed collection fields and upserts the
// delivery address. The caller must own the collection.
func UpdateCollection(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var req updateCollectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collectionID := chi.URLParam(r, "collectionId")
		if logg != nil {
			ctx = logg.WithCollectionID(logg.WithWishlistID(ctx, req.WishlistID), collectionID)
		}
		resp, err := svc.UpdateCollection(ctx, storefront.FromContext(ctx), collectionID, wishlist.UpdateCollectionInput{
			WishlistID:      req.WishlistID,
			Title:           req.Title,
			Description:     req.Description,
			Public:          req.Public,
			ExpiryDate:      req.ExpiryDate,
			DeliveryAddress: req.DeliveryAddress,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func DeleteCollection(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		wishlistID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.DeleteCollection(ctx, storefront.FromContext(ctx), chi.URLParam(r, "collectionId"), wishlistID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func AddProduct(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var req addProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.AddProduct(ctx, storefront.FromContext(ctx), chi.URLParam(r, "collectionId"), req.WishlistID, req.ProductInput)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func UpdateProductVariant(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var req updateVariantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.UpdateProductVariant(ctx, storefront.FromContext(ctx),
			chi.URLParam(r, "collectionId"), chi.URLParam(r, "productId"), req.WishlistID, req.VariantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func RemoveProduct(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		wishlistID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.RemoveProduct(ctx, storefront.FromContext(ctx),
			chi.URLParam(r, "collectionId"), chi.URLParam(r, "productId"), wishlistID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ownerFromRequest reads wishlist_id from the query string or, for clients
// that send DELETE bodies, from the JSON body.
func ownerFromRequest(r *http.Request) (string, error) {
	if id := validators.QueryString(r, "wishlist_id", 128); id != "" {
		return id, nil
	}
	if r.Body != nil && r.ContentLength != 0 {
		var req ownershipRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return "", err
		}
		if id := strings.TrimSpace(req.WishlistID); id != "" {
			return id, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "wishlist_id is required")
}
