package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/upload"
)

func productForm(t *testing.T, fields map[string]string, mainImage []byte, gallery [][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if mainImage != nil {
		fw, err := w.CreateFormFile("mainImage", "main photo.jpg")
		if err != nil {
			t.Fatalf("create main image part: %v", err)
		}
		if _, err := fw.Write(mainImage); err != nil {
			t.Fatalf("write main image: %v", err)
		}
	}
	for i, img := range gallery {
		fw, err := w.CreateFormFile("gallery", "gallery"+strconv.Itoa(i)+".jpg")
		if err != nil {
			t.Fatalf("create gallery part: %v", err)
		}
		if _, err := fw.Write(img); err != nil {
			t.Fatalf("write gallery image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func validProductFields() map[string]string {
	return map[string]string{
		"title":       "Apartment in Agadir",
		"description": "Two rooms near the beach",
		"price":       "450",
		"city":        "Agadir",
		"latitude":    "30.42",
		"longitude":   "-9.6",
	}
}

func TestProductCreate_UnauthenticatedCreatesNothing(t *testing.T) {
	products := newMemProductStore()
	h := NewProductHandler(products, upload.NewStore(t.TempDir()), noopViews())

	e := newTestEcho()
	body, ct := productForm(t, validProductFields(), []byte("img"), nil)
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// No resolved caller: the auth gate rejects before the handler runs.
	chain := middleware.RequireAuth()(h.Create)
	if err := chain(c); err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if products.count() != 0 {
		t.Fatalf("no product should be created, got %d", products.count())
	}
}

func TestProductCreate_MainImageAndGallery(t *testing.T) {
	products := newMemProductStore()
	h := NewProductHandler(products, upload.NewStore(t.TempDir()), noopViews())

	e := newTestEcho()
	body, ct := productForm(t, validProductFields(), []byte("main-bytes"),
		[][]byte{[]byte("g1"), []byte("g2"), []byte("g3")})
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetCurrentUser(c, &model.User{ID: 7, Role: model.RoleUser, Active: true})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK bool   `json:"ok"`
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.ID == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if products.count() != 1 {
		t.Fatalf("expected exactly one product, got %d", products.count())
	}
	if n := products.imageCount(resp.ID); n != 3 {
		t.Fatalf("expected 3 gallery images, got %d", n)
	}
	created, err := products.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("load created product: %v", err)
	}
	if created.Image == nil {
		t.Fatalf("main image reference missing")
	}
	for _, img := range created.Images {
		if img.ProductID != resp.ID {
			t.Fatalf("image %d references product %d, want %d", img.ID, img.ProductID, resp.ID)
		}
	}
}

func TestProductCreate_MissingRequiredFields(t *testing.T) {
	products := newMemProductStore()
	h := NewProductHandler(products, upload.NewStore(t.TempDir()), noopViews())

	fields := validProductFields()
	delete(fields, "city")

	e := newTestEcho()
	body, ct := productForm(t, fields, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetCurrentUser(c, &model.User{ID: 7, Role: model.RoleUser, Active: true})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if products.count() != 0 {
		t.Fatalf("no product should be created, got %d", products.count())
	}
}

func TestProductUpdate_RejectsEmptyFields(t *testing.T) {
	products := newMemProductStore()
	h := NewProductHandler(products, upload.NewStore(t.TempDir()), noopViews())

	p := model.Product{Title: "t", Description: "d", Price: 10, City: "c"}
	if err := products.CreateWithImages(context.Background(), &p, nil); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	e := newTestEcho()
	payload, _ := json.Marshal(map[string]interface{}{
		"title": "", "description": "d2", "price": 20, "city": "c2",
	})
	req := httptest.NewRequest(http.MethodPut, "/products/1", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(p.ID, 10))

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	current, _ := products.GetByID(context.Background(), p.ID)
	if current.Title != "t" {
		t.Fatalf("record must stay unchanged, got title %q", current.Title)
	}
}

func TestProductDelete_CascadesImages(t *testing.T) {
	products := newMemProductStore()
	h := NewProductHandler(products, upload.NewStore(t.TempDir()), noopViews())

	p := model.Product{Title: "t", Description: "d", Price: 10, City: "c"}
	if err := products.CreateWithImages(context.Background(), &p, []string{"/uploads/a.jpg", "/uploads/b.jpg"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if n := products.imageCount(p.ID); n != 2 {
		t.Fatalf("expected 2 images before delete, got %d", n)
	}

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(p.ID, 10))
	middleware.SetCurrentUser(c, &model.User{ID: 7, Role: model.RoleUser, Active: true})

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if products.count() != 0 {
		t.Fatalf("product must be gone, got %d", products.count())
	}
	if n := products.imageCount(p.ID); n != 0 {
		t.Fatalf("images must cascade with the product, got %d", n)
	}
}
