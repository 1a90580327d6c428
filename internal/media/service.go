package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/db"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/imaging"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

const msgImageUploaded = "Image uploaded successfully"

type wishlistRepository interface {
	FindWishlist(ctx context.Context, sf storefront.Storefront, id string) (*wishlist.Wishlist, error)
	UpdateWishlistImage(ctx context.Context, sf storefront.Storefront, id, key string, now time.Time) error
}

type wishlistPresenter interface {
	WishlistDTO(w *wishlist.Wishlist) wishlist.WishlistDTO
}

type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
}

// Service resizes profile images and stores them against a wishlist.
type Service interface {
	UploadProfileImage(ctx context.Context, sf storefront.Storefront, input UploadInput) (*UploadResult, error)
}

// UploadInput carries the raw multipart file for one wishlist.
type UploadInput struct {
	WishlistID string
	Filename   string
	Data       []byte
}

type UploadResult struct {
	Message  string               `json:"message"`
	Wishlist wishlist.WishlistDTO `json:"wishlist"`
}

type ServiceParams struct {
	Wishlists wishlistRepository
	Presenter wishlistPresenter
	Store     objectStore
	Config    config.MediaConfig
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	wishlists wishlistRepository
	presenter wishlistPresenter
	store     objectStore
	cfg       config.MediaConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs the profile image service.
func NewService(params ServiceParams) (Service, error) {
	if params.Wishlists == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Presenter == nil {
		return nil, fmt.Errorf("wishlist presenter required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	cfg := params.Config
	if cfg.ProfileWidth <= 0 {
		cfg.ProfileWidth = 300
	}
	if cfg.ProfileHeight <= 0 {
		cfg.ProfileHeight = 300
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		wishlists: params.Wishlists,
		presenter: params.Presenter,
		store:     params.Store,
		cfg:       cfg,
		logg:      params.Logger,
		now:       clock,
	}, nil
}

func (s *service) UploadProfileImage(ctx context.Context, sf storefront.Storefront, input UploadInput) (*UploadResult, error) {
	wishlistID := strings.TrimSpace(input.WishlistID)
	if wishlistID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profileImg file is required")
	}
	if limit := s.cfg.MaxUploadBytes(); int64(len(input.Data)) > limit {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, "profileImg exceeds the upload limit").
			WithDetails(map[string]any{"max_bytes": limit})
	}
	if detected, ok := sniffImageType(input.Data); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("profileImg must be a %s image", profileImageDescription)).
			WithDetails(map[string]any{"detected": detected})
	}

	w, err := s.wishlists.FindWishlist(ctx, sf, wishlistID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Wishlist does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	if strings.TrimSpace(w.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}

	resized, err := imaging.ContainResize(input.Data, imaging.Options{
		Width:       s.cfg.ProfileWidth,
		Height:      s.cfg.ProfileHeight,
		JPEGQuality: s.cfg.JPEGQuality,
		MaxPixels:   s.cfg.MaxPixels(),
	})
	if err != nil {
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "profileImg dimensions are too large").
				WithDetails(map[string]any{"max_pixels": s.cfg.MaxPixels()})
		}
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("profileImg must be a %s image", profileImageDescription))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "profileImg could not be decoded")
	}

	key := ObjectKey(sf, w.FirstName, wishlistID)
	if err := s.store.Upload(ctx, key, resized.ContentType, resized.Data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload profile image")
	}

	now := s.now()
	if err := s.wishlists.UpdateWishlistImage(ctx, sf, wishlistID, key, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile image key")
	}
	w.Image = &key
	w.UpdatedAt = now

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"wishlist_id":  wishlistID,
			"object_key":   key,
			"content_type": resized.ContentType,
			"bytes":        len(resized.Data),
		}), "media.profile_image_uploaded")
	}

	return &UploadResult{Message: msgImageUploaded, Wishlist: s.presenter.WishlistDTO(w)}, nil
}

// ObjectKey names the stored profile image. Re-uploads overwrite it.
func ObjectKey(sf storefront.Storefront, firstName, wishlistID string) string {
	return sf.ImagePrefix + strings.ToLower(strings.TrimSpace(firstName)) + "-" + wishlistID
}
