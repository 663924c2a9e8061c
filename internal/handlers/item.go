package handlers

import (
	"encoding/json"
	"net/http"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/service/item"
	"triptailor-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ItemHandler stores provider documents.
type ItemHandler struct {
	items    *item.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewItemHandler creates an item handler.
func NewItemHandler(items *item.Service, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, validate: validator.New(), logger: logger}
}

// RecordItem handles POST /api/items/{kind}. It answers 201 for a new item
// and 200 when the document was already stored.
func (h *ItemHandler) RecordItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	kind, err := domain.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		api.Error(w, http.StatusNotFound, "Unknown item kind")
		return
	}

	var req api.RecordItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	rec, err := h.items.Record(r.Context(), kind, domain.Document(req.Document), req.Booked)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if rec.Created {
		status = http.StatusCreated
	}
	api.Success(w, status, api.RecordItemResponse{ID: rec.ID, Kind: string(rec.Kind), Created: rec.Created})
}
