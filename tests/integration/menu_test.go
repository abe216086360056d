//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestMenu(t *testing.T) {
	resp := doGet(t, "/api/menu")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	menu := decodeJSON[menuResponse](t, resp)
	if len(menu.Categories) != 2 {
		t.Errorf("categories: got %d, want 2", len(menu.Categories))
	}
	if len(menu.Products) != 3 {
		t.Errorf("products: got %d, want 3", len(menu.Products))
	}
	if !menu.Settings.IsOpen {
		t.Error("store should be open")
	}
}

// cupProductID resolves the seeded 500ml cup product from the live menu.
func cupProductID(t *testing.T) string {
	t.Helper()

	resp := doGet(t, "/api/menu")
	defer resp.Body.Close()
	menu := decodeJSON[menuResponse](t, resp)

	for _, p := range menu.Products {
		if p.Name == "Açaí 500ml" {
			return p.ID
		}
	}
	t.Fatal("seeded product Açaí 500ml not found")
	return ""
}

func bottleProductID(t *testing.T) string {
	t.Helper()

	resp := doGet(t, "/api/menu")
	defer resp.Body.Close()
	menu := decodeJSON[menuResponse](t, resp)

	for _, p := range menu.Products {
		if p.Name == "Garrafa de Açaí 1L" {
			return p.ID
		}
	}
	t.Fatal("seeded bottle product not found")
	return ""
}

func TestProductOptions_CupLine(t *testing.T) {
	resp := doGet(t, "/api/products/"+cupProductID(t)+"/options")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	options := decodeJSON[[]optionCategory](t, resp)
	// Fruits (cup only) plus the topping split: free pool and paid pool.
	if len(options) != 3 {
		t.Fatalf("option categories: got %d, want 3", len(options))
	}

	if !options[0].Required {
		t.Error("fruits category should be required")
	}
	if options[0].MaxSelections != 2 {
		t.Errorf("fruits cap: got %d, want 2", options[0].MaxSelections)
	}

	free, paid := options[1], options[2]
	if !free.Free {
		t.Error("second category should be the free topping pool")
	}
	for _, f := range free.Flavors {
		if f.ExtraPrice != "0" && f.ExtraPrice != "0.00" {
			t.Errorf("free pool flavor %s has extra price %s", f.Name, f.ExtraPrice)
		}
	}
	if paid.Free {
		t.Error("third category should be the paid topping pool")
	}
}

func TestProductOptions_BottleLineSkipsCupCategories(t *testing.T) {
	resp := doGet(t, "/api/products/"+bottleProductID(t)+"/options")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	options := decodeJSON[[]optionCategory](t, resp)
	for _, opt := range options {
		if opt.Name == "Frutas" {
			t.Error("cup-only fruits category offered for a bottle product")
		}
	}
}

func TestProductOptions_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/00000000-0000-0000-0000-000000000000/options")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
