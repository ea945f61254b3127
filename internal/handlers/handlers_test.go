package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mams-ops/apiserver/internal/services"
	"github.com/mams-ops/apiserver/internal/storage"
	"github.com/mams-ops/apiserver/internal/store"
	"github.com/mams-ops/apiserver/types"
)

// memoryObjectStore is a map-backed object store for export round trips.
type memoryObjectStore struct {
	objects map[string][]byte
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (s *memoryObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *memoryObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memoryObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryObjectStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *memoryObjectStore) Bucket() string { return "test-bucket" }

const testSecret = "test-secret"

// newTestRouter wires the full route tree over the memory backend, the
// same shape the server builds in production.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	return newTestRouterWithArchive(t, nil)
}

func newTestRouterWithArchive(t *testing.T, archive *storage.Storage) *chi.Mux {
	t.Helper()

	users, err := store.NewMemoryUserRepository("")
	if err != nil {
		t.Fatalf("NewMemoryUserRepository: %v", err)
	}

	events := services.NewEventPublisher(nil, nil)
	userService := services.NewUserService(users)
	purchaseService := services.NewPurchaseService(store.NewMemoryPurchaseRepository(), events)
	transferService := services.NewTransferService(store.NewMemoryTransferRepository(), events)
	assignmentService := services.NewAssignmentService(store.NewMemoryAssignmentRepository(), events)
	expenditureService := services.NewExpenditureService(store.NewMemoryExpenditureRepository(), events)
	reportService := services.NewReportService(
		store.NewMemoryPurchaseRepository(),
		store.NewMemoryTransferRepository(),
		store.NewMemoryAssignmentRepository(),
		store.NewMemoryExpenditureRepository(),
		archive,
	)

	authMiddleware := RequireAuth(testSecret, userService)
	commandGate := RequireRoles(types.RoleAdmin, types.RoleBaseCommander)
	assignmentHandler := NewAssignmentHandler(assignmentService, expenditureService, nil)
	reportHandler := NewReportHandler(reportService)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, nil, testSecret)
	})
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/dashboard", reportHandler.Dashboard)
		r.Get("/bases", Bases)
		r.Route("/purchases", func(r chi.Router) {
			PurchaseRouter(r, purchaseService, nil)
		})
		r.Route("/transfers", func(r chi.Router) {
			TransferRouter(r, transferService, nil)
		})
		r.Route("/assignments", func(r chi.Router) {
			r.Use(commandGate)
			AssignmentRouter(r, assignmentHandler)
		})
		r.Route("/expenditures", func(r chi.Router) {
			r.Use(commandGate)
			ExpenditureRouter(r, assignmentHandler)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Use(commandGate)
			ReportRouter(r, reportService)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(RequireRoles(types.RoleAdmin))
			UserRouter(r, userService)
		})
	})
	router.NotFound(NotFound)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, username, password string) (string, types.User) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s = %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token, resp.User
}

func TestLoginSucceedsForSeedAccounts(t *testing.T) {
	router := newTestRouter(t)

	token, user := login(t, router, "commander1", "cmd123")
	if token == "" {
		t.Fatal("login returned empty token")
	}
	if user.Role != types.RoleBaseCommander || user.BaseName != "Fort Liberty" {
		t.Fatalf("logged in user = %+v", user)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "commander1", Password: "cmd124"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error != "invalid credentials" {
		t.Fatalf("error = %q", resp.Error)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "nobody", Password: "whatever"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", rec.Code)
	}
}

func TestRegisterAutoLogin(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:  "recruit",
		FirstName: "New",
		LastName:  "Recruit",
		Password:  "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Role != types.RoleLogisticsOfficer {
		t.Fatalf("registered role = %s, want logistics_officer", resp.User.Role)
	}
	if resp.User.BaseName != "" {
		t.Fatalf("registered base = %q, want none", resp.User.BaseName)
	}
	if resp.Token == "" {
		t.Fatal("register did not auto-login")
	}

	// The token works immediately.
	me := doJSON(t, router, http.MethodGet, "/auth/me", resp.Token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me after register = %d", me.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:  "short",
		FirstName: "Too",
		LastName:  "Short",
		Password:  "five5",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:        "mismatch",
		FirstName:       "Pass",
		LastName:        "Mismatch",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("password mismatch = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:  "admin",
		FirstName: "Taken",
		LastName:  "Name",
		Password:  "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username = %d, want 409", rec.Code)
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/purchases?status=pending", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Redirect != "/login" {
		t.Fatalf("redirect = %q, want /login", resp.Redirect)
	}
	if resp.From != "/purchases?status=pending" {
		t.Fatalf("from = %q, want original location", resp.From)
	}

	rec = doJSON(t, router, http.MethodGet, "/purchases", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestCommandGateBlocksLogisticsOfficer(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "logistics1", "log123")

	for _, path := range []string{"/assignments", "/expenditures", "/reports/summary"} {
		rec := doJSON(t, router, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s = %d, want 403", path, rec.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Redirect != "/unauthorized" {
			t.Fatalf("redirect = %q, want /unauthorized", resp.Redirect)
		}
	}

	// The shared routes stay open to the same account.
	rec := doJSON(t, router, http.MethodGet, "/purchases", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("purchases = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d, want 200", rec.Code)
	}
}

func TestCommandGateAllowsCommander(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "commander1", "cmd123")

	rec := doJSON(t, router, http.MethodGet, "/assignments", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("assignments = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/reports/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reports summary = %d, want 200", rec.Code)
	}
}

func TestListPurchasesIsScoped(t *testing.T) {
	router := newTestRouter(t)

	adminToken, _ := login(t, router, "admin", "admin123")
	rec := doJSON(t, router, http.MethodGet, "/purchases", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin purchases = %d", rec.Code)
	}
	var adminList PurchaseListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &adminList); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if adminList.Total != 3 {
		t.Fatalf("admin total = %d, want 3", adminList.Total)
	}

	commanderToken, _ := login(t, router, "commander1", "cmd123")
	rec = doJSON(t, router, http.MethodGet, "/purchases", commanderToken, nil)
	var scoped PurchaseListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &scoped); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if scoped.Total != 2 {
		t.Fatalf("commander total = %d, want 2", scoped.Total)
	}
	for _, p := range scoped.Items {
		if p.Base != "Fort Liberty" {
			t.Fatalf("commander saw %s at %s", p.ID, p.Base)
		}
	}
}

func TestCreatePurchaseValidation(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "logistics1", "log123")

	rec := doJSON(t, router, http.MethodPost, "/purchases", token, CreatePurchaseRequest{
		AssetType:    "Field Radio",
		Quantity:     0,
		PurchaseDate: "2025-07-01",
		Supplier:     "CommTech",
		UnitCost:     150,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/purchases", token, CreatePurchaseRequest{
		AssetType:    "Field Radio",
		Quantity:     10,
		PurchaseDate: "2025-07-01",
		Supplier:     "CommTech",
		UnitCost:     150,
		Base:         "Camp Pendleton",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created types.Purchase
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID != "PUR-004" {
		t.Fatalf("created ID = %s, want PUR-004", created.ID)
	}
	if created.Base != "Fort Liberty" {
		t.Fatalf("created base = %s, want caller's own base", created.Base)
	}
}

func TestCreateTransferRejectsSameBase(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "commander1", "cmd123")

	rec := doJSON(t, router, http.MethodPost, "/transfers", token, CreateTransferRequest{
		AssetType:    "Humvee",
		Quantity:     1,
		ToBase:       "Fort Liberty",
		TransferDate: "2025-07-02",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("same-base transfer = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/transfers", token, CreateTransferRequest{
		AssetType:    "Humvee",
		Quantity:     1,
		ToBase:       "Camp Pendleton",
		TransferDate: "2025-07-02",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer = %d: %s", rec.Code, rec.Body.String())
	}
	var created types.Transfer
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.FromBase != "Fort Liberty" {
		t.Fatalf("from base = %s, want caller's own base", created.FromBase)
	}
}

func TestExportDisabledReturnsNotImplemented(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "admin", "admin123")

	rec := doJSON(t, router, http.MethodPost, "/reports/export", token, nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("export without archive = %d, want 501", rec.Code)
	}
}

func TestExportDownloadAndDelete(t *testing.T) {
	router := newTestRouterWithArchive(t, storage.NewStorage(newMemoryObjectStore()))
	token, _ := login(t, router, "commander1", "cmd123")

	rec := doJSON(t, router, http.MethodPost, "/reports/export", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("export = %d, want 201", rec.Code)
	}
	var resp ExportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode export response: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/reports/export/"+resp.Key, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("download content type = %s", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "kind,") {
		t.Fatalf("download body = %q", rec.Body.String())
	}

	// Keys outside the export prefix are rejected.
	rec = doJSON(t, router, http.MethodGet, "/reports/export/etc/passwd", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign key download = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/reports/export/"+resp.Key, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/reports/export/"+resp.Key, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("download after delete = %d, want 404", rec.Code)
	}
}

func TestLogoutIsStateless(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "logistics1", "log123")

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d, want 204", rec.Code)
	}

	// Logging out does not touch the registered credentials; the same
	// account logs straight back in.
	if tok, _ := login(t, router, "logistics1", "log123"); tok == "" {
		t.Fatal("re-login after logout failed")
	}
}

func TestAdminAssignsBaseToRegisteredOfficer(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:  "officer2",
		FirstName: "Base",
		LastName:  "Less",
		Password:  "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d", rec.Code)
	}
	var registered AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	// A commander may not manage accounts.
	commanderToken, _ := login(t, router, "commander1", "cmd123")
	baseID := "2"
	path := "/users/" + strconv.Itoa(registered.User.ID)
	rec = doJSON(t, router, http.MethodPut, path, commanderToken, UpdateUserRequest{BaseID: &baseID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("commander update = %d, want 403", rec.Code)
	}

	adminToken, _ := login(t, router, "admin", "admin123")
	rec = doJSON(t, router, http.MethodPut, path, adminToken, UpdateUserRequest{BaseID: &baseID})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update = %d: %s", rec.Code, rec.Body.String())
	}
	var updated types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.BaseName != "Camp Pendleton" {
		t.Fatalf("assigned base = %q, want Camp Pendleton", updated.BaseName)
	}

	unknown := "99"
	rec = doJSON(t, router, http.MethodPut, path, adminToken, UpdateUserRequest{BaseID: &unknown})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown base = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/users/9999", adminToken, UpdateUserRequest{Role: "base_commander"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing user = %d, want 404", rec.Code)
	}
}

func TestBasesListsInstallations(t *testing.T) {
	router := newTestRouter(t)
	token, _ := login(t, router, "logistics1", "log123")

	rec := doJSON(t, router, http.MethodGet, "/bases", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("bases = %d, want 200", rec.Code)
	}
	var bases []types.Base
	if err := json.Unmarshal(rec.Body.Bytes(), &bases); err != nil {
		t.Fatalf("decode bases: %v", err)
	}
	if len(bases) != 3 {
		t.Fatalf("bases = %d, want 3", len(bases))
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/no-such-route", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error != "not found" {
		t.Fatalf("error = %q", resp.Error)
	}
}
