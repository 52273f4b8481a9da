package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/omara/internal/closet"
	"github.com/erazemk/omara/internal/model"
)

// ClothesHandler handles cloth endpoints, scans and move history.
type ClothesHandler struct {
	Closet *closet.Service
}

// List handles GET /api/clothes.
func (h *ClothesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clothes, err := h.Closet.ListClothes(r.Context(), ownerID(r), model.ClothQuery{
		Color:     q.Get("color"),
		Owner:     q.Get("owner"),
		Category:  q.Get("category"),
		BagID:     q.Get("bagId"),
		Favorite:  closet.ParseFavorite(q.Get("favorite")),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, clothes)
}

// Scan handles GET /api/clothes/scan/{barcodeValue}.
func (h *ClothesHandler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.Closet.ResolveScan(r.Context(), ownerID(r), chi.URLParam(r, "barcodeValue"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// FilterOptions handles GET /api/clothes/filters/options.
func (h *ClothesHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Closet.FilterOptions(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, opts)
}

// Get handles GET /api/clothes/{clothId}.
func (h *ClothesHandler) Get(w http.ResponseWriter, r *http.Request) {
	cloth, err := h.Closet.GetCloth(r.Context(), ownerID(r), chi.URLParam(r, "clothId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, cloth)
}

// Create handles POST /api/clothes.
func (h *ClothesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req closet.ClothInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cloth, err := h.Closet.CreateCloth(r.Context(), ownerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, cloth)
}

// Update handles PUT /api/clothes/{clothId}. Absent fields are left as they are.
func (h *ClothesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ClothPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	cloth, err := h.Closet.UpdateCloth(r.Context(), ownerID(r), chi.URLParam(r, "clothId"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, cloth)
}

// ToggleFavorite handles PATCH /api/clothes/{clothId}/favorite.
func (h *ClothesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := h.Closet.ToggleFavorite(r.Context(), ownerID(r), chi.URLParam(r, "clothId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

// Delete handles DELETE /api/clothes/{clothId}.
func (h *ClothesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Closet.DeleteCloth(r.Context(), ownerID(r), chi.URLParam(r, "clothId")); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "cloth deleted"})
}

// Moves handles GET /api/clothes/{clothId}/moves.
func (h *ClothesHandler) Moves(w http.ResponseWriter, r *http.Request) {
	moves, err := h.Closet.Moves(r.Context(), ownerID(r), chi.URLParam(r, "clothId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, moves)
}
