package services_test

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"gaadibazaar/internal/domain"
	"gaadibazaar/internal/services"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newImageSvc() *services.ImageService {
	return services.NewImageService(services.DefaultImagePolicy())
}

func TestImageBuffer_DimensionBoundary(t *testing.T) {
	svc := newImageSvc()

	// exactly at the minimum passes
	res := svc.ValidateBuffer("primary", pngBytes(t, 800, 600))
	if !res.Valid || len(res.Errors) != 0 {
		t.Fatalf("800x600 must pass, got %+v", res)
	}
	if res.Width != 800 || res.Height != 600 {
		t.Fatalf("decoded dimensions wrong: %+v", res)
	}

	// one pixel under fails with too_small
	res = svc.ValidateBuffer("primary", pngBytes(t, 799, 600))
	if res.Valid {
		t.Fatalf("799x600 must fail, got %+v", res)
	}
	if res.Errors[0].Code != domain.CodeTooSmall {
		t.Fatalf("want too_small, got %+v", res.Errors)
	}
}

func TestImageBuffer_TooLargeSkipsDecode(t *testing.T) {
	svc := newImageSvc()
	// Not an image at all: the size check must trip before any decode.
	oversize := bytes.Repeat([]byte{0xAB}, int(svc.Policy.MaxBytes)+1)
	res := svc.ValidateBuffer("primary", oversize)
	if res.Valid || res.Errors[0].Code != domain.CodeTooLarge {
		t.Fatalf("want too_large before decode, got %+v", res)
	}
}

func TestImageBuffer_Unreadable(t *testing.T) {
	svc := newImageSvc()
	res := svc.ValidateBuffer("primary", []byte("definitely not an image"))
	if res.Valid || res.Errors[0].Code != domain.CodeUnreadable {
		t.Fatalf("want unreadable, got %+v", res)
	}
}

func TestImageBuffer_AspectWarning(t *testing.T) {
	svc := newImageSvc()
	// 1000x800 = 1.25, inside the band: no warning
	res := svc.ValidateBuffer("primary", pngBytes(t, 1000, 800))
	if !res.Valid || len(res.Warnings) != 0 {
		t.Fatalf("1.25 aspect must pass clean, got %+v", res)
	}
	// 1600x800 = 2.0, outside: valid but warned
	res = svc.ValidateBuffer("primary", pngBytes(t, 1600, 800))
	if !res.Valid {
		t.Fatalf("aspect issues are advisory, got %+v", res)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != domain.CodeAspectRatio {
		t.Fatalf("want aspect warning, got %+v", res.Warnings)
	}
}

func TestImageURL_StatusMapping(t *testing.T) {
	good := pngBytes(t, 1024, 768)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(good)
		case "/gone.png":
			w.WriteHeader(http.StatusNotFound)
		case "/private.png":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	svc := newImageSvc()

	res := svc.ValidateURL("primary", srv.URL+"/ok.png")
	if !res.Valid || res.Width != 1024 {
		t.Fatalf("fetched image should validate, got %+v", res)
	}

	cases := map[string]string{
		"/gone.png":    domain.CodeFetchNotFound,
		"/private.png": domain.CodeFetchForbidden,
		"/broken.png":  domain.CodeFetchFailed,
	}
	for path, want := range cases {
		res := svc.ValidateURL("primary", srv.URL+path)
		if res.Valid || len(res.Errors) != 1 || res.Errors[0].Code != want {
			t.Fatalf("%s: want %s, got %+v", path, want, res)
		}
	}
}

func TestImageBatch_MinimumValid(t *testing.T) {
	svc := newImageSvc()
	results := svc.ValidateBatch(map[string][]byte{
		"a": pngBytes(t, 1000, 800),
		"b": pngBytes(t, 1000, 800),
		"c": []byte("junk"),
	})
	if len(results) != 3 {
		t.Fatalf("want per-name results, got %d", len(results))
	}
	if !services.MinimumValid(results, 2) {
		t.Fatal("two valid images should satisfy a minimum of 2")
	}
	if services.MinimumValid(results, 3) {
		t.Fatal("a corrupt image must not count toward the minimum")
	}
}
