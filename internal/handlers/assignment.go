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

// AssignmentHandler provides HTTP handlers for the assignment and
// expenditure ledgers.
type AssignmentHandler struct {
	assignmentService  *services.AssignmentService
	expenditureService *services.ExpenditureService
	collector          *metrics.Collector
}

func NewAssignmentHandler(
	assignmentService *services.AssignmentService,
	expenditureService *services.ExpenditureService,
	collector *metrics.Collector,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService:  assignmentService,
		expenditureService: expenditureService,
		collector:          collector,
	}
}

// AssignmentRouter registers assignment routes on the given router.
func AssignmentRouter(r chi.Router, handler *AssignmentHandler) {
	r.Get("/", handler.ListAssignments)
	r.Post("/", handler.CreateAssignment)
}

// ExpenditureRouter registers expenditure routes on the given router.
func ExpenditureRouter(r chi.Router, handler *AssignmentHandler) {
	r.Get("/", handler.ListExpenditures)
	r.Post("/", handler.CreateExpenditure)
}

func (h *AssignmentHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	assignments, err := h.assignmentService.List(r.Context(), user, queryFromRequest(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	writeJSON(w, http.StatusOK, AssignmentListResponse{Items: assignments, Total: len(assignments)})
}

func (h *AssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.AssetType = strings.TrimSpace(req.AssetType)
	req.AssignedTo = strings.TrimSpace(req.AssignedTo)
	if req.AssetType == "" || req.AssignedTo == "" || req.AssignmentDate == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	assignment, err := h.assignmentService.Create(r.Context(), user, services.CreateAssignmentInput{
		AssetType:      req.AssetType,
		Quantity:       req.Quantity,
		AssignedTo:     req.AssignedTo,
		AssignmentDate: req.AssignmentDate,
		Base:           req.Base,
		Purpose:        req.Purpose,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	if h.collector != nil {
		h.collector.RecordCreated("assignment")
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) ListExpenditures(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	expenditures, err := h.expenditureService.List(r.Context(), user, queryFromRequest(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenditures")
		return
	}
	writeJSON(w, http.StatusOK, ExpenditureListResponse{Items: expenditures, Total: len(expenditures)})
}

func (h *AssignmentHandler) CreateExpenditure(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	var req CreateExpenditureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.AssetType = strings.TrimSpace(req.AssetType)
	req.ExpendedBy = strings.TrimSpace(req.ExpendedBy)
	if req.AssetType == "" || req.ExpendedBy == "" || req.ExpenditureDate == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	expenditure, err := h.expenditureService.Create(r.Context(), user, services.CreateExpenditureInput{
		AssetType:       req.AssetType,
		Quantity:        req.Quantity,
		ExpendedBy:      req.ExpendedBy,
		ExpenditureDate: req.ExpenditureDate,
		Base:            req.Base,
		Purpose:         req.Purpose,
		Justification:   req.Justification,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create expenditure")
		return
	}

	if h.collector != nil {
		h.collector.RecordCreated("expenditure")
	}
	writeJSON(w, http.StatusCreated, expenditure)
}

type CreateAssignmentRequest struct {
	AssetType      string `json:"asset_type"`
	Quantity       int    `json:"quantity"`
	AssignedTo     string `json:"assigned_to"`
	AssignmentDate string `json:"assignment_date"`
	Base           string `json:"base,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
}

type CreateExpenditureRequest struct {
	AssetType       string `json:"asset_type"`
	Quantity        int    `json:"quantity"`
	ExpendedBy      string `json:"expended_by"`
	ExpenditureDate string `json:"expenditure_date"`
	Base            string `json:"base,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
	Justification   string `json:"justification,omitempty"`
}

type AssignmentListResponse struct {
	Items []types.Assignment `json:"items"`
	Total int                `json:"total"`
}

type ExpenditureListResponse struct {
	Items []types.Expenditure `json:"items"`
	Total int                 `json:"total"`
}
