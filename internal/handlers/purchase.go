package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mams-ops/apiserver/internal/metrics"
	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/internal/services"
	"github.com/mams-ops/apiserver/types"
)

// PurchaseHandler provides HTTP handlers for the purchase ledger.
type PurchaseHandler struct {
	purchaseService *services.PurchaseService
	collector       *metrics.Collector
}

func NewPurchaseHandler(purchaseService *services.PurchaseService, collector *metrics.Collector) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, collector: collector}
}

// PurchaseRouter registers purchase routes on the given router. The
// router is expected to already be behind auth middleware.
func PurchaseRouter(r chi.Router, purchaseService *services.PurchaseService, collector *metrics.Collector) {
	handler := NewPurchaseHandler(purchaseService, collector)

	r.Get("/", handler.ListPurchases)
	r.Post("/", handler.CreatePurchase)
}

func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	purchases, err := h.purchaseService.List(r.Context(), user, queryFromRequest(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	writeJSON(w, http.StatusOK, PurchaseListResponse{Items: purchases, Total: len(purchases)})
}

func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.AssetType = strings.TrimSpace(req.AssetType)
	req.Supplier = strings.TrimSpace(req.Supplier)
	if req.AssetType == "" || req.Supplier == "" || req.PurchaseDate == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	if req.UnitCost < 0 {
		writeError(w, http.StatusBadRequest, "unit cost must not be negative")
		return
	}

	purchase, err := h.purchaseService.Create(r.Context(), user, services.CreatePurchaseInput{
		AssetType:    req.AssetType,
		Quantity:     req.Quantity,
		PurchaseDate: req.PurchaseDate,
		Supplier:     req.Supplier,
		Base:         req.Base,
		UnitCost:     req.UnitCost,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create purchase")
		return
	}

	if h.collector != nil {
		h.collector.RecordCreated("purchase")
	}
	writeJSON(w, http.StatusCreated, purchase)
}

type CreatePurchaseRequest struct {
	AssetType    string  `json:"asset_type"`
	Quantity     int     `json:"quantity"`
	PurchaseDate string  `json:"purchase_date"`
	Supplier     string  `json:"supplier"`
	Base         string  `json:"base,omitempty"`
	UnitCost     float64 `json:"unit_cost"`
}

type PurchaseListResponse struct {
	Items []types.Purchase `json:"items"`
	Total int              `json:"total"`
}

// queryFromRequest reads the shared list filters. All filters are
// conjunctive with base scoping.
func queryFromRequest(r *http.Request) scope.Query {
	values := r.URL.Query()
	return scope.Query{
		Search: strings.TrimSpace(values.Get("search")),
		Status: strings.TrimSpace(values.Get("status")),
		Base:   strings.TrimSpace(values.Get("base")),
	}
}
