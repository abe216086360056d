package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/catalog"
	"github.com/najugourmet/storefront/internal/domain/selection"
)

type bannerDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link,omitempty"`
}

type productCategoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Emoji string `json:"emoji,omitempty"`
	Color string `json:"color,omitempty"`
}

type productDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `json:"available"`
}

type settingsDTO struct {
	IsOpen        bool   `json:"is_open"`
	OpenMessage   string `json:"open_message,omitempty"`
	ClosedMessage string `json:"closed_message,omitempty"`
}

type menuDTO struct {
	Banners    []bannerDTO          `json:"banners"`
	Categories []productCategoryDTO `json:"categories"`
	Products   []productDTO         `json:"products"`
	Settings   settingsDTO          `json:"settings"`
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.catalog.Menu(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load menu", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load menu")
		return
	}

	out := menuDTO{
		Banners:    make([]bannerDTO, 0, len(menu.Banners)),
		Categories: make([]productCategoryDTO, 0, len(menu.Categories)),
		Products:   make([]productDTO, 0, len(menu.Products)),
		Settings: settingsDTO{
			IsOpen:        menu.Settings.IsOpen,
			OpenMessage:   menu.Settings.OpenMessage,
			ClosedMessage: menu.Settings.ClosedMessage,
		},
	}
	for _, b := range menu.Banners {
		out.Banners = append(out.Banners, bannerDTO{
			ID: b.ID, Title: b.Title, ImageURL: b.ImageURL, Link: b.Link,
		})
	}
	for _, c := range menu.Categories {
		out.Categories = append(out.Categories, productCategoryDTO{
			ID: c.ID, Name: c.Name, Slug: c.Slug, Emoji: c.Emoji, Color: c.Color,
		})
	}
	for _, p := range menu.Products {
		out.Products = append(out.Products, productDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			CategoryID:  p.CategoryID,
			ImageURL:    p.ImageURL,
			Available:   p.Available,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

type flavorDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}

type optionCategoryDTO struct {
	Key           string      `json:"key"`
	CategoryID    string      `json:"category_id"`
	Name          string      `json:"name"`
	Required      bool        `json:"required"`
	MaxSelections int         `json:"max_selections"`
	Free          bool        `json:"free"`
	Flavors       []flavorDTO `json:"flavors"`
}

func (h *Handler) getProductOptions(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	menu, err := h.catalog.Menu(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load menu", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load menu")
		return
	}

	product, err := h.catalog.ProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load product")
		return
	}

	categories := selection.ForProduct(menu, *product, h.classifier)
	out := make([]optionCategoryDTO, 0, len(categories))
	for _, cat := range categories {
		dto := optionCategoryDTO{
			Key:           cat.Key(),
			CategoryID:    cat.CategoryID,
			Name:          cat.Name,
			Required:      cat.Required,
			MaxSelections: cat.MaxSelections,
			Free:          cat.Free,
			Flavors:       make([]flavorDTO, 0, len(cat.Flavors)),
		}
		for _, f := range cat.Flavors {
			extra := f.ExtraPrice
			if cat.Free {
				extra = decimal.Zero
			}
			dto.Flavors = append(dto.Flavors, flavorDTO{ID: f.ID, Name: f.Name, ExtraPrice: extra})
		}
		out = append(out, dto)
	}

	writeJSON(w, r, http.StatusOK, out)
}
