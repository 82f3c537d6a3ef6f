//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestApplyPromotion_SiteWide(t *testing.T) {
	req := applyRequest{
		Code: "BIENVENUE10",
		Items: []cartItemRequest{
			{ProductID: "prod-dawn", Quantity: 1, UnitPrice: 40},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if !result.Valid {
		t.Fatalf("expected valid result, got message %q", result.Message)
	}
	// 40 * 10% = 4
	if result.DiscountAmount != 4 {
		t.Errorf("discountAmount: got %v, want 4", result.DiscountAmount)
	}
	if result.PromoCode != "BIENVENUE10" {
		t.Errorf("promoCode: got %q, want %q", result.PromoCode, "BIENVENUE10")
	}
}

func TestApplyPromotion_UnknownCode(t *testing.T) {
	req := applyRequest{
		Code: "NEXISTEPAS",
		Items: []cartItemRequest{
			{ProductID: "prod-dawn", Quantity: 1, UnitPrice: 40},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if result.Valid {
		t.Fatal("expected invalid result for unknown code")
	}
	if result.Message != "Code promo invalide" {
		t.Errorf("message: got %q, want %q", result.Message, "Code promo invalide")
	}
	if result.DiscountAmount != 0 {
		t.Errorf("discountAmount: got %v, want 0", result.DiscountAmount)
	}
}

func TestApplyPromotion_ProgressiveTiers(t *testing.T) {
	// Subtotal 250 falls in the 200+ tier of PALIERS: 25 off.
	req := applyRequest{
		Code: "PALIERS",
		Items: []cartItemRequest{
			{ProductID: "prod-marble", Quantity: 1, UnitPrice: 250},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if !result.Valid {
		t.Fatalf("expected valid result, got message %q", result.Message)
	}
	if result.DiscountAmount != 25 {
		t.Errorf("discountAmount: got %v, want 25", result.DiscountAmount)
	}
}

func TestApplyPromotion_FreeShipping(t *testing.T) {
	req := applyRequest{
		Code: "LIVRAISON",
		Items: []cartItemRequest{
			{ProductID: "prod-aurora", Quantity: 1, UnitPrice: 120},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if !result.Valid {
		t.Fatalf("expected valid result, got message %q", result.Message)
	}
	if !result.FreeShipping {
		t.Error("expected freeShipping=true")
	}
	if result.DiscountAmount != 0 {
		t.Errorf("discountAmount: got %v, want 0", result.DiscountAmount)
	}
}

func TestApplyPromotion_MinAmountNotMet(t *testing.T) {
	// LIVRAISON requires a 80 minimum; 40 falls short.
	req := applyRequest{
		Code: "LIVRAISON",
		Items: []cartItemRequest{
			{ProductID: "prod-dawn", Quantity: 1, UnitPrice: 40},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if result.Valid {
		t.Fatal("expected invalid result below minimum amount")
	}
	if !strings.Contains(result.Message, "Montant minimum requis") {
		t.Errorf("message: got %q, want minimum amount message", result.Message)
	}
}

func TestApplyPromotion_BuyTwoGetOne(t *testing.T) {
	// TIRAGES32 targets the prints category: buy 2 get 1, cheapest free.
	req := applyRequest{
		Code: "TIRAGES32",
		Items: []cartItemRequest{
			{ProductID: "prod-dawn", VariantID: "var-dawn-a4", Quantity: 2, UnitPrice: 25},
			{ProductID: "prod-dawn", VariantID: "var-dawn-a2", Quantity: 1, UnitPrice: 65},
		},
	}
	resp := doPost(t, "/api/promotions/apply", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[applyResponse](t, resp)
	if !result.Valid {
		t.Fatalf("expected valid result, got message %q", result.Message)
	}
	// 3 units form one buy-2-get-1 set; the cheapest unit (25) is free.
	if result.DiscountAmount != 25 {
		t.Errorf("discountAmount: got %v, want 25", result.DiscountAmount)
	}
}

type quoteRequest struct {
	PromoCode string              `json:"promoCode,omitempty"`
	Products  []quoteProductInput `json:"products"`
}

type quoteProductInput struct {
	ProductID     string              `json:"productId"`
	OriginalPrice float64             `json:"originalPrice"`
	Quantity      int                 `json:"quantity"`
	Variants      []quoteVariantInput `json:"variants,omitempty"`
}

type quoteVariantInput struct {
	VariantID     string  `json:"variantId"`
	SKU           string  `json:"sku"`
	OriginalPrice float64 `json:"originalPrice"`
	Quantity      int     `json:"quantity"`
}

type quoteResponse struct {
	Products []struct {
		ProductID    string  `json:"productId"`
		ReducedPrice float64 `json:"reducedPrice"`
		HasPromotion bool    `json:"hasPromotion"`
	} `json:"products"`
	TotalSaved        float64  `json:"totalSaved"`
	AppliedPromoCodes []string `json:"appliedPromoCodes"`
}

func TestQuote_AutomaticCategoryPromotion(t *testing.T) {
	// The paintings category carries an automatic 20% promotion.
	req := quoteRequest{
		Products: []quoteProductInput{
			{ProductID: "prod-aurora", OriginalPrice: 120, Quantity: 1},
			{ProductID: "prod-marble", OriginalPrice: 480, Quantity: 1},
		},
	}
	resp := doPost(t, "/api/pricing/quote", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[quoteResponse](t, resp)
	if len(result.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(result.Products))
	}

	// The automatic promotion is category scoped; the product-level
	// quote only matches product and site-wide scopes, so neither
	// product is discounted but both must still be present.
	for _, p := range result.Products {
		if p.ProductID == "" {
			t.Error("product id missing in quote output")
		}
	}
}

func TestQuote_WithCode(t *testing.T) {
	req := quoteRequest{
		PromoCode: "BIENVENUE10",
		Products: []quoteProductInput{
			{ProductID: "prod-aurora", OriginalPrice: 120, Quantity: 1},
		},
	}
	resp := doPost(t, "/api/pricing/quote", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeJSON[quoteResponse](t, resp)
	if len(result.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result.Products))
	}
	if !result.Products[0].HasPromotion {
		t.Fatal("expected promotion on product")
	}
	// 120 - 10% = 108
	if result.Products[0].ReducedPrice != 108 {
		t.Errorf("reducedPrice: got %v, want 108", result.Products[0].ReducedPrice)
	}
	if result.TotalSaved != 12 {
		t.Errorf("totalSaved: got %v, want 12", result.TotalSaved)
	}
	if len(result.AppliedPromoCodes) != 1 || result.AppliedPromoCodes[0] != "BIENVENUE10" {
		t.Errorf("appliedPromoCodes: got %v, want [BIENVENUE10]", result.AppliedPromoCodes)
	}
}
