package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/omara/internal/closet"
	"github.com/erazemk/omara/internal/model"
)

// BagsHandler handles bag endpoints and label exports.
type BagsHandler struct {
	Closet *closet.Service
}

// List handles GET /api/bags.
func (h *BagsHandler) List(w http.ResponseWriter, r *http.Request) {
	bags, err := h.Closet.ListBags(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, bags)
}

// Create handles POST /api/bags.
func (h *BagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req closet.BagInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	bag, err := h.Closet.CreateBag(r.Context(), ownerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, model.BagWithCount{Bag: *bag})
}

// Get handles GET /api/bags/{bagId}.
func (h *BagsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bag, err := h.Closet.GetBag(r.Context(), ownerID(r), chi.URLParam(r, "bagId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, bag)
}

// Rename handles PUT /api/bags/{bagId}.
func (h *BagsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req closet.BagInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	bag, err := h.Closet.RenameBag(r.Context(), ownerID(r), chi.URLParam(r, "bagId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, bag)
}

// Delete handles DELETE /api/bags/{bagId}. Clothes in the bag go with it.
func (h *BagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.Closet.DeleteBag(r.Context(), ownerID(r), chi.URLParam(r, "bagId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":        "bag deleted",
		"deletedClothes": n,
	})
}

// ExportSheet handles GET /api/export/barcodes.
func (h *BagsHandler) ExportSheet(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Closet.LabelSheet(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bag-barcodes.pdf"`)
	w.Write(pdf)
}

// ExportLabel handles GET /api/export/barcode/{bagId}.
func (h *BagsHandler) ExportLabel(w http.ResponseWriter, r *http.Request) {
	bagID := chi.URLParam(r, "bagId")
	png, err := h.Closet.BagLabel(r.Context(), ownerID(r), bagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="barcode-%s.png"`, bagID))
	w.Write(png)
}
