package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubWishlists struct {
	wishlist   *wishlist.Wishlist
	findErr    error
	updateErr  error
	updatedID  string
	updatedKey string
}

func (s *stubWishlists) FindWishlist(ctx context.Context, sf storefront.Storefront, id string) (*wishlist.Wishlist, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.wishlist == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.wishlist
	return &copied, nil
}

func (s *stubWishlists) UpdateWishlistImage(ctx context.Context, sf storefront.Storefront, id, key string, now time.Time) error {
	s.updatedID = id
	s.updatedKey = key
	return s.updateErr
}

type stubPresenter struct{}

func (stubPresenter) WishlistDTO(w *wishlist.Wishlist) wishlist.WishlistDTO {
	dto := wishlist.WishlistDTO{ID: w.ID, FirstName: w.FirstName, LastName: w.LastName}
	if w.Image != nil {
		url := "https://cdn.example/" + *w.Image
		dto.Image = &url
	}
	return dto
}

type stubStore struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (s *stubStore) Upload(ctx context.Context, key, contentType string, body []byte) error {
	s.key = key
	s.contentType = contentType
	s.body = body
	return s.err
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, repo *stubWishlists, store *stubStore, cfg config.MediaConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Wishlists: repo,
		Presenter: stubPresenter{},
		Store:     store,
		Config:    cfg,
		Clock:     func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestUploadProfileImageSuccess(t *testing.T) {
	t.Parallel()

	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "7001", FirstName: "Ada", LastName: "Obi"}}
	store := &stubStore{}
	svc := newTestService(t, repo, store, config.MediaConfig{})

	result, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{
		WishlistID: "7001",
		Filename:   "me.png",
		Data:       pngFixture(t, 600, 300),
	})
	if err != nil {
		t.Fatalf("UploadProfileImage: %v", err)
	}
	if store.key != "ada-7001" {
		t.Fatalf("unexpected object key %q", store.key)
	}
	if store.contentType != "image/png" {
		t.Fatalf("unexpected content type %q", store.contentType)
	}
	decoded, err := png.Decode(bytes.NewReader(store.body))
	if err != nil {
		t.Fatalf("decode uploaded body: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Fatalf("expected 300x300 output, got %v", b)
	}
	if repo.updatedKey != "ada-7001" || repo.updatedID != "7001" {
		t.Fatalf("image key not persisted: %+v", repo)
	}
	if result.Message != msgImageUploaded {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if result.Wishlist.Image == nil || *result.Wishlist.Image != "https://cdn.example/ada-7001" {
		t.Fatalf("expected image url in response, got %v", result.Wishlist.Image)
	}
}

func TestUploadProfileImageUsesStorefrontPrefix(t *testing.T) {
	t.Parallel()

	sf, _ := storefront.Lookup("ashluxury")
	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "42", FirstName: "Zed"}}
	store := &stubStore{}
	svc := newTestService(t, repo, store, config.MediaConfig{})

	if _, err := svc.UploadProfileImage(context.Background(), sf, UploadInput{WishlistID: "42", Data: pngFixture(t, 10, 10)}); err != nil {
		t.Fatalf("UploadProfileImage: %v", err)
	}
	if store.key != "ashluxury_zed-42" {
		t.Fatalf("unexpected key %q", store.key)
	}
}

func TestUploadProfileImageRejectsNonImage(t *testing.T) {
	t.Parallel()

	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "1", FirstName: "Ada"}}
	store := &stubStore{}
	svc := newTestService(t, repo, store, config.MediaConfig{})

	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{
		WishlistID: "1",
		Data:       []byte("%PDF-1.4 not an image"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if store.key != "" {
		t.Fatal("nothing should be uploaded for a rejected file")
	}
}

func TestUploadProfileImageRejectsMissingFile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubWishlists{}, &stubStore{}, config.MediaConfig{})
	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "1"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUploadProfileImageTooLarge(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubWishlists{}, &stubStore{}, config.MediaConfig{MaxUploadMB: 1})
	data := append(pngFixture(t, 4, 4), make([]byte, 2<<20)...)
	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "1", Data: data})
	assertCode(t, err, pkgerrors.CodeTooLarge)
}

func TestUploadProfileImageRejectsOversizedDimensions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1100, 1000))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "1", FirstName: "Ada"}}
	store := &stubStore{}
	svc := newTestService(t, repo, store, config.MediaConfig{MaxMegapixels: 1})

	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "1", Data: buf.Bytes()})
	assertCode(t, err, pkgerrors.CodeValidation)
	if store.key != "" || repo.updatedKey != "" {
		t.Fatal("nothing should be uploaded for an oversized image")
	}
}

func TestUploadProfileImageWishlistMissing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubWishlists{}, &stubStore{}, config.MediaConfig{})
	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "404", Data: pngFixture(t, 4, 4)})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUploadProfileImageRequiresFirstName(t *testing.T) {
	t.Parallel()

	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "1", FirstName: "  "}}
	svc := newTestService(t, repo, &stubStore{}, config.MediaConfig{})
	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "1", Data: pngFixture(t, 4, 4)})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUploadProfileImageStoreFailure(t *testing.T) {
	t.Parallel()

	repo := &stubWishlists{wishlist: &wishlist.Wishlist{ID: "1", FirstName: "Ada"}}
	store := &stubStore{err: errors.New("s3 down")}
	svc := newTestService(t, repo, store, config.MediaConfig{})

	_, err := svc.UploadProfileImage(context.Background(), storefront.Default(), UploadInput{WishlistID: "1", Data: pngFixture(t, 4, 4)})
	assertCode(t, err, pkgerrors.CodeDependency)
	if repo.updatedKey != "" {
		t.Fatal("key must not be persisted when the upload fails")
	}
}

func TestHumanReadableList(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"":                       nil,
		"PNG":                    {"PNG"},
		"PNG or JPEG":            {"PNG", "JPEG"},
		"PNG, JPEG, GIF or WebP": {"PNG", "JPEG", "GIF", "WebP"},
	}
	for want, items := range cases {
		if got := humanReadableList(items); got != want {
			t.Fatalf("humanReadableList(%v) = %q, want %q", items, got, want)
		}
	}
}
