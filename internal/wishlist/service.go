package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/pkg/db"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/types"
)

const (
	msgCollectionCreated         = "Collection created"
	msgCollectionCreatedWithItem = "Collection created and product added"
	msgCollectionUpdated         = "Collection updated successfully"
	msgCollectionDeleted         = "Collection deleted successfully"
	msgProductAdded              = "Product added to collection successfully"
	msgProductVariantUpdated     = "Product variant updated successfully"
	msgProductRemoved            = "Product removed from collection successfully"
	msgCollectionNotOwned        = "Collection item not found for the provided wishlist"
	msgShareUnavailable          = "Collection item not found or link expired/unavailable"
	msgProductNotInCollection    = "Product not found in this collection"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImageURLResolver turns stored image keys into public URLs.
type ImageURLResolver interface {
	PublicURL(key string) string
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Images ImageURLResolver
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service exposes wishlist, collection and share-link operations.
type Service interface {
	GetWishlist(ctx context.Context, sf storefront.Storefront, wishlistID string) (*WishlistResult, error)
	AddCollection(ctx context.Context, sf storefront.Storefront, input AddCollectionInput) (*AddCollectionResult, error)
	GetCollection(ctx context.Context, sf storefront.Storefront, collectionID string) (*CollectionResult, error)
	UpdateCollection(ctx context.Context, sf storefront.Storefront, collectionID string, input UpdateCollectionInput) (*CollectionResult, error)
	DeleteCollection(ctx context.Context, sf storefront.Storefront, collectionID, wishlistID string) (*DeleteCollectionResult, error)
	AddProduct(ctx context.Context, sf storefront.Storefront, collectionID, wishlistID string, input ProductInput) (*ProductResult, error)
	UpdateProductVariant(ctx context.Context, sf storefront.Storefront, collectionID, productID, wishlistID string, variantID types.ShopifyID) (*ProductResult, error)
	RemoveProduct(ctx context.Context, sf storefront.Storefront, collectionID, productID, wishlistID string) (*ProductResult, error)
	GetSharedCollection(ctx context.Context, sf storefront.Storefront, shareID string) (*SharedCollectionResult, error)
	WishlistDTO(w *Wishlist) WishlistDTO
}

type service struct {
	repo   Repository
	tx     txRunner
	images ImageURLResolver
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		images: params.Images,
		logg:   params.Logger,
		now:    clock,
	}, nil
}

func (s *service) GetWishlist(ctx context.Context, sf storefront.Storefront, wishlistID string) (*WishlistResult, error) {
	wishlistID = strings.TrimSpace(wishlistID)
	if wishlistID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}

	w, err := s.repo.FindWishlist(ctx, sf, wishlistID)
	if err != nil {
		return nil, mapLookupError(err, "Wishlist not found", "load wishlist")
	}

	collections, err := s.repo.ListCollections(ctx, sf, wishlistID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collections")
	}

	ids := make([]uuid.UUID, 0, len(collections))
	for _, c := range collections {
		ids = append(ids, c.ID)
	}
	products, err := s.repo.ListProducts(ctx, sf, ids...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collection products")
	}
	byCollection := make(map[uuid.UUID][]Product, len(collections))
	for _, p := range products {
		byCollection[p.CollectionID] = append(byCollection[p.CollectionID], p)
	}

	summaries := make([]CollectionSummary, 0, len(collections))
	for _, c := range collections {
		items := byCollection[c.ID]
		if items == nil {
			items = []Product{}
		}
		summaries = append(summaries, CollectionSummary{
			Collection: c,
			Products:   items,
			NoOfItems:  len(items),
		})
	}

	return &WishlistResult{Wishlist: WishlistWithCollections{
		WishlistDTO: s.WishlistDTO(w),
		Collections: summaries,
	}}, nil
}

func (s *service) AddCollection(ctx context.Context, sf storefront.Storefront, input AddCollectionInput) (*AddCollectionResult, error) {
	input.WishlistID = strings.TrimSpace(input.WishlistID)
	input.Title = strings.TrimSpace(input.Title)
	if input.WishlistID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist id is required")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Collection title is required")
	}
	if input.Product != nil && !input.Product.ProductID.IsZero() {
		if err := validateProductInput(input.Product); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var (
		wishlist   *Wishlist
		collection Collection
		created    []Product
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		w, err := repo.FindWishlist(ctx, sf, input.WishlistID)
		switch {
		case err == nil:
			wishlist = w
		case db.IsNotFound(err):
			if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "first_name and last_name are required to create a new wishlist")
			}
			wishlist = &Wishlist{
				ID:        input.WishlistID,
				FirstName: strings.TrimSpace(input.FirstName),
				LastName:  strings.TrimSpace(input.LastName),
				Image:     optionalString(input.Image),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateWishlist(ctx, sf, wishlist); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wishlist")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
		}

		collection = Collection{
			ID:         uuid.New(),
			WishlistID: wishlist.ID,
			Title:      input.Title,
			Public:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.CreateCollection(ctx, sf, &collection); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create collection")
		}

		if input.Product == nil || input.Product.ProductID.IsZero() {
			return nil
		}
		// The first product takes the collection title.
		first := newProduct(collection.ID, *input.Product, now)
		first.Title = collection.Title
		if err := repo.CreateProduct(ctx, sf, &first); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add product")
		}
		created = append(created, first)
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := msgCollectionCreated
	if len(created) > 0 {
		message = msgCollectionCreatedWithItem
	}
	if created == nil {
		created = []Product{}
	}
	return &AddCollectionResult{
		Message:    message,
		Wishlist:   s.WishlistDTO(wishlist),
		Collection: collection,
		Products:   created,
	}, nil
}

func (s *service) GetCollection(ctx context.Context, sf storefront.Storefront, collectionID string) (*CollectionResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindCollection(ctx, sf, id)
	if err != nil {
		return nil, mapLookupError(err, "Collection item not found", "load collection")
	}

	detail, err := s.loadDetail(ctx, s.repo, sf, *c)
	if err != nil {
		return nil, err
	}

	result := &CollectionResult{Collection: detail}
	w, err := s.repo.FindWishlist(ctx, sf, c.WishlistID)
	switch {
	case err == nil:
		dto := s.WishlistDTO(w)
		result.Wishlist = &dto
	case !db.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	return result, nil
}

func (s *service) UpdateCollection(ctx context.Context, sf storefront.Storefront, collectionID string, input UpdateCollectionInput) (*CollectionResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}
	wishlistID := strings.TrimSpace(input.WishlistID)
	if wishlistID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist_id is required")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}

	now := s.now()
	var (
		detail   CollectionDetail
		wishlist *Wishlist
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindOwnedCollection(ctx, sf, id, wishlistID)
		if err != nil {
			return mapLookupError(err, msgCollectionNotOwned, "load collection")
		}

		updates := map[string]any{"updated_at": now}
		if current.ShareID == nil || *current.ShareID == "" {
			shareID, err := NewShareID()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint share id")
			}
			updates["share_id"] = shareID
		}
		if input.Title != nil {
			updates["title"] = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}
		if input.Public != nil {
			updates["public"] = *input.Public
		}
		if input.ExpiryDate.Set {
			updates["expiry_date"] = input.ExpiryDate.Value
		}
		if err := repo.UpdateCollection(ctx, sf, id, updates); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "share id collision, retry the update")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection")
		}

		if addr := input.DeliveryAddress; addr != nil {
			row := DeliveryAddress{
				ID:           uuid.New(),
				CollectionID: id,
				Apartment:    strings.TrimSpace(addr.Apartment),
				Country:      strings.TrimSpace(addr.Country),
				Postcode:     strings.TrimSpace(addr.Postcode),
				City:         strings.TrimSpace(addr.City),
				State:        strings.TrimSpace(addr.State),
				Address:      strings.TrimSpace(addr.Address),
				Phone:        strings.TrimSpace(addr.Phone),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := repo.UpsertDeliveryAddress(ctx, sf, &row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert delivery address")
			}
		}

		updated, err := repo.FindCollection(ctx, sf, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload collection")
		}
		if detail, err = s.loadDetail(ctx, repo, sf, *updated); err != nil {
			return err
		}

		w, err := repo.FindWishlist(ctx, sf, wishlistID)
		if err != nil && !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
		}
		wishlist = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CollectionResult{Message: msgCollectionUpdated, Collection: detail}
	if wishlist != nil {
		dto := s.WishlistDTO(wishlist)
		result.Wishlist = &dto
	}
	return result, nil
}

func (s *service) DeleteCollection(ctx context.Context, sf storefront.Storefront, collectionID, wishlistID string) (*DeleteCollectionResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}
	wishlistID = strings.TrimSpace(wishlistID)
	if wishlistID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist_id is required")
	}

	var removed Collection
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		c, err := repo.FindOwnedCollection(ctx, sf, id, wishlistID)
		if err != nil {
			return mapLookupError(err, msgCollectionNotOwned, "load collection")
		}
		if err := repo.DeleteCollection(ctx, sf, id); err != nil {
			return mapLookupError(err, msgCollectionNotOwned, "delete collection")
		}
		removed = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &DeleteCollectionResult{Message: msgCollectionDeleted, Collection: removed}, nil
}

func (s *service) AddProduct(ctx context.Context, sf storefront.Storefront, collectionID, wishlistID string, input ProductInput) (*ProductResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}
	if input.ProductID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindOwnedCollection(ctx, sf, id, strings.TrimSpace(wishlistID)); err != nil {
		return nil, mapLookupError(err, msgCollectionNotOwned, "load collection")
	}

	if _, err := s.repo.FindProduct(ctx, sf, id, input.ProductID.String()); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Product already exists in this collection")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
	}

	product := newProduct(id, input, s.now())
	product.Title = strings.TrimSpace(input.Title)
	if err := s.repo.CreateProduct(ctx, sf, &product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Product already exists in this collection")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add product")
	}
	return &ProductResult{Message: msgProductAdded, Product: product}, nil
}

func (s *service) UpdateProductVariant(ctx context.Context, sf storefront.Storefront, collectionID, productID, wishlistID string, variantID types.ShopifyID) (*ProductResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}
	pid := types.ParseShopifyID(productID)
	if pid.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if _, err := s.repo.FindOwnedCollection(ctx, sf, id, strings.TrimSpace(wishlistID)); err != nil {
		return nil, mapLookupError(err, "Collection not found for the provided wishlist", "load collection")
	}
	if err := s.repo.UpdateProductVariant(ctx, sf, id, pid.String(), variantID.String(), s.now()); err != nil {
		return nil, mapLookupError(err, msgProductNotInCollection, "update product variant")
	}
	product, err := s.repo.FindProduct(ctx, sf, id, pid.String())
	if err != nil {
		return nil, mapLookupError(err, msgProductNotInCollection, "reload product")
	}
	return &ProductResult{Message: msgProductVariantUpdated, Product: *product}, nil
}

func (s *service) RemoveProduct(ctx context.Context, sf storefront.Storefront, collectionID, productID, wishlistID string) (*ProductResult, error) {
	id, err := parseCollectionID(collectionID)
	if err != nil {
		return nil, err
	}
	pid := types.ParseShopifyID(productID)
	if pid.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var removed Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindOwnedCollection(ctx, sf, id, strings.TrimSpace(wishlistID)); err != nil {
			return mapLookupError(err, msgCollectionNotOwned, "load collection")
		}
		product, err := repo.FindProduct(ctx, sf, id, pid.String())
		if err != nil {
			return mapLookupError(err, msgProductNotInCollection, "load product")
		}
		affected, err := repo.DeleteProduct(ctx, sf, id, pid.String())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotInCollection)
		}
		removed = *product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Message: msgProductRemoved, Product: removed}, nil
}

func (s *service) GetSharedCollection(ctx context.Context, sf storefront.Storefront, shareID string) (*SharedCollectionResult, error) {
	shareID = strings.TrimSpace(shareID)
	if shareID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgShareUnavailable)
	}

	c, err := s.repo.FindCollectionByShareID(ctx, sf, shareID)
	if err != nil {
		return nil, mapLookupError(err, msgShareUnavailable, "load shared collection")
	}
	if !c.Available(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgShareUnavailable)
	}

	detail, err := s.loadDetail(ctx, s.repo, sf, *c)
	if err != nil {
		return nil, err
	}

	shared := SharedCollection{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		ShareID:         c.ShareID,
		Public:          c.Public,
		ExpiryDate:      c.ExpiryDate,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		DeliveryAddress: detail.DeliveryAddress,
		Products:        make([]SharedProduct, 0, len(detail.Products)),
	}
	for _, p := range detail.Products {
		shared.Products = append(shared.Products, SharedProduct{
			ID:            p.ID,
			ProductID:     p.ProductID,
			ProductHandle: p.ProductHandle,
			Title:         p.Title,
			Description:   p.Description,
			Price:         p.Price,
			ImageURL:      p.ImageURL,
			Quantity:      p.Quantity,
			VariantID:     p.VariantID,
		})
	}

	result := &SharedCollectionResult{Collection: shared}
	w, err := s.repo.FindWishlist(ctx, sf, c.WishlistID)
	switch {
	case err == nil:
		dto := s.WishlistDTO(w)
		result.Wishlist = SharedWishlist{FirstName: dto.FirstName, LastName: dto.LastName, Image: dto.Image}
	case !db.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}

	if err := s.repo.IncrementViews(ctx, sf, c.ID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "collection_id", c.ID.String()), "share.view_count_failed")
	}
	return result, nil
}

// WishlistDTO resolves the stored image key into a public URL.
func (s *service) WishlistDTO(w *Wishlist) WishlistDTO {
	if w == nil {
		return WishlistDTO{}
	}
	dto := WishlistDTO{
		ID:        w.ID,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.Image != nil && *w.Image != "" {
		url := *w.Image
		if s.images != nil && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = s.images.PublicURL(url)
		}
		dto.Image = &url
	}
	return dto
}

func (s *service) loadDetail(ctx context.Context, repo Repository, sf storefront.Storefront, c Collection) (CollectionDetail, error) {
	detail := CollectionDetail{Collection: c}

	addr, err := repo.FindDeliveryAddress(ctx, sf, c.ID)
	switch {
	case err == nil:
		detail.DeliveryAddress = addr
	case !db.IsNotFound(err):
		return CollectionDetail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load delivery address")
	}

	products, err := repo.ListProducts(ctx, sf, c.ID)
	if err != nil {
		return CollectionDetail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collection products")
	}
	if products == nil {
		products = []Product{}
	}
	detail.Products = products
	return detail, nil
}

func newProduct(collectionID uuid.UUID, input ProductInput, now time.Time) Product {
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	return Product{
		ID:            uuid.New(),
		CollectionID:  collectionID,
		ProductID:     input.ProductID,
		ProductHandle: strings.TrimSpace(input.ProductHandle),
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      strings.TrimSpace(input.ImageURL),
		Gifted:        input.Gifted,
		Quantity:      quantity,
		VariantID:     input.VariantID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func validateProductInput(input *ProductInput) error {
	if input.Gifted < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "gifted cannot be negative")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.Price.Valid && input.Price.Decimal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

// parseCollectionID treats malformed ids as unknown collections.
func parseCollectionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Collection item not found")
	}
	return id, nil
}

func mapLookupError(err error, notFoundMsg, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
