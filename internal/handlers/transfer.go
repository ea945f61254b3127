package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mams-ops/apiserver/internal/metrics"
	"github.com/mams-ops/apiserver/internal/services"
	"github.com/mams-ops/apiserver/types"
)

// TransferHandler provides HTTP handlers for the transfer ledger.
type TransferHandler struct {
	transferService *services.TransferService
	collector       *metrics.Collector
}

func NewTransferHandler(transferService *services.TransferService, collector *metrics.Collector) *TransferHandler {
	return &TransferHandler{transferService: transferService, collector: collector}
}

// TransferRouter registers transfer routes on the given router. The
// router is expected to already be behind auth middleware.
func TransferRouter(r chi.Router, transferService *services.TransferService, collector *metrics.Collector) {
	handler := NewTransferHandler(transferService, collector)

	r.Get("/", handler.ListTransfers)
	r.Post("/", handler.CreateTransfer)
}

func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	transfers, err := h.transferService.List(r.Context(), user, queryFromRequest(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	writeJSON(w, http.StatusOK, TransferListResponse{Items: transfers, Total: len(transfers)})
}

func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.AssetType = strings.TrimSpace(req.AssetType)
	req.ToBase = strings.TrimSpace(req.ToBase)
	if req.AssetType == "" || req.ToBase == "" || req.TransferDate == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	fromBase := strings.TrimSpace(req.FromBase)
	if user.Role != types.RoleAdmin || fromBase == "" {
		fromBase = user.BaseName
	}
	if fromBase == req.ToBase {
		writeError(w, http.StatusBadRequest, "source and destination bases must differ")
		return
	}

	transfer, err := h.transferService.Create(r.Context(), user, services.CreateTransferInput{
		AssetType:    req.AssetType,
		Quantity:     req.Quantity,
		FromBase:     fromBase,
		ToBase:       req.ToBase,
		TransferDate: req.TransferDate,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create transfer")
		return
	}

	if h.collector != nil {
		h.collector.RecordCreated("transfer")
	}
	writeJSON(w, http.StatusCreated, transfer)
}

type CreateTransferRequest struct {
	AssetType    string `json:"asset_type"`
	Quantity     int    `json:"quantity"`
	FromBase     string `json:"from_base,omitempty"`
	ToBase       string `json:"to_base"`
	TransferDate string `json:"transfer_date"`
	Notes        string `json:"notes,omitempty"`
}

type TransferListResponse struct {
	Items []types.Transfer `json:"items"`
	Total int              `json:"total"`
}
