package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/api/validators"
	"github.com/ashcorp/wishlist-backend/internal/media"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

const profileImageField = "profileImg"

type addCollectionRequest struct {
	Title     string `json:"title" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Image     string `json:"image"`
	// description belongs to the optional first product.
	wishlist.ProductInput
}

func (req addCollectionRequest) toInput(wishlistID string) wishlist.AddCollectionInput {
	input := wishlist.AddCollectionInput{
		WishlistID: wishlistID,
		Title:      req.Title,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Image:      req.Image,
	}
	if !req.ProductID.IsZero() {
		product := req.ProductInput
		input.Product = &product
	}
	return input
}

// GetWishlist returns a wishlist with its collections and their products.
func GetWishlist(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		resp, err := svc.GetWishlist(ctx, storefront.FromContext(ctx), chi.URLParam(r, "wishlistId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AddCollection creates a collection, creating the wishlist on first use.
func AddCollection(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var req addCollectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		wishlistID := chi.URLParam(r, "wishlistId")
		if logg != nil {
			ctx = logg.WithWishlistID(ctx, wishlistID)
		}
		resp, err := svc.AddCollection(ctx, storefront.FromContext(ctx), req.toInput(wishlistID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// UploadProfileImage accepts the multipart profileImg field.
func UploadProfileImage(svc media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		data, filename, err := validators.ReadMultipartFile(r, profileImageField, maxBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		wishlistID := chi.URLParam(r, "wishlistId")
		if logg != nil {
			ctx = logg.WithWishlistID(ctx, wishlistID)
		}
		resp, err := svc.UploadProfileImage(ctx, storefront.FromContext(ctx), media.UploadInput{
			WishlistID: wishlistID,
			Filename:   filename,
			Data:       data,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
