//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var dawn *productResponse
	for i := range products {
		if products[i].ID == "prod-dawn" {
			dawn = &products[i]
			break
		}
	}

	if dawn == nil {
		t.Fatal("product 'prod-dawn' not found")
	}
	if dawn.Name != "Lever du jour" {
		t.Errorf("name: got %q, want %q", dawn.Name, "Lever du jour")
	}
	if dawn.Price != 40 {
		t.Errorf("price: got %v, want 40", dawn.Price)
	}
	if dawn.CategorySlug != "prints" {
		t.Errorf("categorySlug: got %q, want %q", dawn.CategorySlug, "prints")
	}
	if len(dawn.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(dawn.Variants))
	}
	if dawn.Variants[0].SKU == "" {
		t.Error("variant sku is empty")
	}
	if dawn.Image.Thumbnail == "" {
		t.Error("image.thumbnail is empty")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/prod-aurora")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "prod-aurora" {
		t.Errorf("id: got %q, want %q", product.ID, "prod-aurora")
	}
	if product.Name != "Aurore sur la Seine" {
		t.Errorf("name: got %q, want %q", product.Name, "Aurore sur la Seine")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/missing")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}
