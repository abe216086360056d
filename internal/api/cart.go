package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/cart"
	"github.com/najugourmet/storefront/internal/domain/catalog"
	"github.com/najugourmet/storefront/internal/domain/selection"
)

type selectionDTO struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	FlavorID     string          `json:"flavor_id"`
	FlavorName   string          `json:"flavor_name"`
	Charged      decimal.Decimal `json:"charged"`
}

type lineItemDTO struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Selections  []selectionDTO  `json:"selections"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type cartDTO struct {
	Items      []lineItemDTO   `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func cartToDTO(c cart.Cart) cartDTO {
	out := cartDTO{
		Items:      make([]lineItemDTO, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	for _, item := range c.Items {
		dto := lineItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Selections:  make([]selectionDTO, 0, len(item.Selections)),
			TotalPrice:  item.TotalPrice,
		}
		for _, sel := range item.Selections {
			dto.Selections = append(dto.Selections, selectionDTO{
				CategoryID:   sel.CategoryID,
				CategoryName: sel.CategoryName,
				FlavorID:     sel.FlavorID,
				FlavorName:   sel.FlavorName,
				Charged:      sel.Charged,
			})
		}
		out.Items = append(out.Items, dto)
	}
	return out
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessions.Cart(sessionID(r.Context()))
	writeJSON(w, r, http.StatusOK, cartToDTO(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessions.Update(sessionID(r.Context()), cart.Cart.Clear)
	writeJSON(w, r, http.StatusOK, cartToDTO(c))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Selections maps a category key (as served by the options endpoint) to
	// the flavor ids picked in it.
	Selections map[string][]string `json:"selections"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpenStore(w, r) {
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "quantity must be positive")
		return
	}

	menu, err := h.catalog.Menu(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load menu", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load menu")
		return
	}

	product, err := h.catalog.ProductByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !product.Available {
		writeError(w, r, http.StatusUnprocessableEntity, "product is unavailable")
		return
	}

	categories := selection.ForProduct(menu, *product, h.classifier)
	state, errMsg := buildState(categories, req.Selections)
	if errMsg != "" {
		writeError(w, r, http.StatusUnprocessableEntity, errMsg)
		return
	}
	if !selection.IsValid(state, categories) {
		writeError(w, r, http.StatusUnprocessableEntity, "a required selection is missing")
		return
	}

	item := cart.NewLineItem(
		uuid.New().String(),
		product.ID,
		product.Name,
		product.Price,
		req.Quantity,
		selection.Resolve(categories, state),
	)
	c := h.sessions.Update(sessionID(r.Context()), func(c cart.Cart) cart.Cart {
		return c.Add(item)
	})

	writeJSON(w, r, http.StatusCreated, cartToDTO(c))
}

// buildState replays the requested selections through the toggle rules so the
// resulting state honours every category cap. It returns a non-empty message
// on the first rejected or unknown selection.
func buildState(categories []selection.Category, requested map[string][]string) (selection.State, string) {
	byKey := make(map[string]selection.Category, len(categories))
	for _, cat := range categories {
		byKey[cat.Key()] = cat
	}

	state := selection.State{}
	for key, flavorIDs := range requested {
		cat, ok := byKey[key]
		if !ok {
			return nil, "unknown option category: " + key
		}

		known := make(map[string]bool, len(cat.Flavors))
		for _, f := range cat.Flavors {
			known[f.ID] = true
		}

		for _, flavorID := range flavorIDs {
			if !known[flavorID] {
				return nil, "unknown flavor in " + cat.Name
			}
			next, outcome := selection.Toggle(state, cat, flavorID)
			if outcome == selection.ToggleRejected {
				return nil, "too many selections in " + cat.Name
			}
			state = next
		}
	}
	return state, ""
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	c := h.sessions.Update(sessionID(r.Context()), func(c cart.Cart) cart.Cart {
		return c.UpdateQuantity(itemID, req.Quantity)
	})
	writeJSON(w, r, http.StatusOK, cartToDTO(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	c := h.sessions.Update(sessionID(r.Context()), func(c cart.Cart) cart.Cart {
		return c.Remove(itemID)
	})
	writeJSON(w, r, http.StatusOK, cartToDTO(c))
}
