package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stardustkit/cataloguer/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Catalogue: config.CatalogueConfig{
			DataRoot:    t.TempDir(),
			DefaultUnit: "mJy",
			MaxSessions: 4,
		},
		Upload:  config.UploadConfig{MaxFileSize: 1 << 20},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	return NewServer(cfg)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// createCatalogue opens a session and returns its id.
func createCatalogue(t *testing.T, s *Server, name, unit string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": name, "unit": unit})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create catalogue status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp catalogueResponse
	decodeBody(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("create catalogue returned empty id")
	}
	return resp.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestCreateCatalogue(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": "cosmos", "unit": "uJy"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp catalogueResponse
	decodeBody(t, rec, &resp)
	if resp.Name != "cosmos" {
		t.Errorf("Name = %q, want %q", resp.Name, "cosmos")
	}
	if resp.Unit != "uJy" {
		t.Errorf("Unit = %q, want %q", resp.Unit, "uJy")
	}
	if resp.Targets != 0 {
		t.Errorf("Targets = %d, want 0", resp.Targets)
	}
	if filepath.Base(resp.Path) != "cosmos" {
		t.Errorf("Path = %q, want it to end in cosmos", resp.Path)
	}
}

func TestCreateCatalogue_DefaultUnit(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": "plain"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp catalogueResponse
	decodeBody(t, rec, &resp)
	if resp.Unit != "mJy" {
		t.Errorf("Unit = %q, want configured default mJy", resp.Unit)
	}
}

func TestCreateCatalogue_DuplicateName(t *testing.T) {
	s := newTestServer(t)
	createCatalogue(t, s, "twice", "mJy")
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": "twice"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCreateCatalogue_BadUnit(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": "weird", "unit": "furlongs"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "UNIT001" {
		t.Errorf("Code = %q, want UNIT001", resp.Code)
	}
}

func TestCreateCatalogue_SessionCap(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 4; i++ {
		createCatalogue(t, s, fmt.Sprintf("cat%d", i), "mJy")
	}
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues",
		map[string]any{"name": "overflow"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestGetCatalogue_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/catalogues/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "SES001" {
		t.Errorf("Code = %q, want SES001", resp.Code)
	}
}

func TestDeleteCatalogue(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "ephemeral", "mJy")

	rec := doJSON(t, s, http.MethodDelete, "/api/catalogues/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/catalogues/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListCatalogues(t *testing.T) {
	s := newTestServer(t)
	createCatalogue(t, s, "one", "mJy")
	createCatalogue(t, s, "two", "uJy")

	rec := doJSON(t, s, http.MethodGet, "/api/catalogues", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp []catalogueResponse
	decodeBody(t, rec, &resp)
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
}

func TestCreateTarget_Duplicate(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "dupe", "mJy")

	body := map[string]any{"id": 7, "ra": 150.1, "dec": 2.2, "z": 1.5}
	if rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/targets", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/targets", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "CAT001" {
		t.Errorf("Code = %q, want CAT001", resp.Code)
	}
}

func TestAddObservation_UnknownTarget(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "orphan", "mJy")

	rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/observations", map[string]any{
		"target_id": 99, "label": "A", "flux": 1.0, "flux_error": 0.1, "unit": "mJy", "code": 1,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != "CAT002" {
		t.Errorf("Code = %q, want CAT002", resp.Code)
	}
}

func TestAddObservation_AmbiguousBinding(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "ambig", "mJy")
	doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/targets",
		map[string]any{"id": 1, "ra": 0.0, "dec": 0.0, "z": 1.0})

	for _, body := range []map[string]any{
		{"target_id": 1, "label": "A", "flux": 1.0, "flux_error": 0.1, "unit": "mJy"},
		{"target_id": 1, "label": "A", "flux": 1.0, "flux_error": 0.1, "unit": "mJy", "code": 1, "wavelength": 250.0},
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/observations", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != "CAT003" {
			t.Errorf("Code = %q, want CAT003", resp.Code)
		}
	}
}

// TestCatalogueFlow walks a catalogue from creation through save and
// artifact download.
func TestCatalogueFlow(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "walk", "mJy")

	targets := []map[string]any{
		{"id": 1, "ra": 150.1, "dec": 2.2, "z": 1.5},
		{"id": 2, "ra": 150.2, "dec": 2.3, "z": 2.0},
	}
	for _, tgt := range targets {
		if rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/targets", tgt); rec.Code != http.StatusCreated {
			t.Fatalf("create target status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	observations := []map[string]any{
		{"target_id": 1, "label": "A", "flux": 1000.0, "flux_error": 100.0, "unit": "uJy", "code": 1},
		{"target_id": 2, "label": "A", "flux": 2000.0, "flux_error": 500.0, "unit": "uJy", "code": 1},
		{"target_id": 1, "label": "B", "flux": 3000.0, "flux_error": 400.0, "unit": "uJy", "wavelength": 250.0},
	}
	for _, obs := range observations {
		if rec := doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/observations", obs); rec.Code != http.StatusCreated {
			t.Fatalf("add observation status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	// Column surface reflects both groups
	rec := doJSON(t, s, http.MethodGet, "/api/catalogues/"+id, nil)
	var info catalogueResponse
	decodeBody(t, rec, &info)
	wantCols := []string{"id", "ra", "dec", "z", "f_A", "fe_A", "f_B", "fe_B", "wl_B"}
	if len(info.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", info.Columns, wantCols)
	}
	for i, c := range wantCols {
		if info.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, info.Columns[i], c)
		}
	}
	if info.Targets != 2 {
		t.Errorf("Targets = %d, want 2", info.Targets)
	}

	// Column existence is by instrument label
	rec = doJSON(t, s, http.MethodGet, "/api/catalogues/"+id+"/columns/A", nil)
	var colResp map[string]any
	decodeBody(t, rec, &colResp)
	if colResp["exists"] != true {
		t.Errorf("columns/A exists = %v, want true", colResp["exists"])
	}
	rec = doJSON(t, s, http.MethodGet, "/api/catalogues/"+id+"/columns/C", nil)
	colResp = nil
	decodeBody(t, rec, &colResp)
	if colResp["exists"] != false {
		t.Errorf("columns/C exists = %v, want false", colResp["exists"])
	}

	// Save derives and writes the bundle
	rec = doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	var saveResp struct {
		Artifacts []string `json:"artifacts"`
	}
	decodeBody(t, rec, &saveResp)
	if len(saveResp.Artifacts) != 6 {
		t.Fatalf("artifacts = %v, want 6 entries", saveResp.Artifacts)
	}

	// Download the bands mapping and check its content
	rec = doJSON(t, s, http.MethodGet, "/api/catalogues/"+id+"/artifacts/walk.bands", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "1 f_A fe_A\n" {
		t.Errorf("bands content = %q, want %q", got, "1 f_A fe_A\n")
	}

	// Summary is plain text
	rec = doJSON(t, s, http.MethodGet, "/api/catalogues/"+id+"/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "targets: 2") {
		t.Errorf("summary should report target count, got %q", rec.Body.String())
	}
}

func TestDownloadArtifact_NotFound(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "nosave", "mJy")

	rec := doJSON(t, s, http.MethodGet, "/api/catalogues/"+id+"/artifacts/nosave.bands", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func uploadCSV(t *testing.T, s *Server, path, csvData string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "data.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(csvData)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestUploadTargetsCSV(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "bulk", "mJy")

	csvData := "id,ra,dec,z\n1,150.1,2.2,1.5\n2,150.2,2.3,2.0\n"
	rec := uploadCSV(t, s, "/api/catalogues/"+id+"/targets/csv", csvData)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp loadResultResponse
	decodeBody(t, rec, &resp)
	if resp.Processed != 2 || resp.Applied != 2 {
		t.Errorf("Processed/Applied = %d/%d, want 2/2", resp.Processed, resp.Applied)
	}

	get := doJSON(t, s, http.MethodGet, "/api/catalogues/"+id, nil)
	var info catalogueResponse
	decodeBody(t, get, &info)
	if info.Targets != 2 {
		t.Errorf("Targets = %d, want 2", info.Targets)
	}
}

func TestUploadObservationsCSV_PartialFailure(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "partial", "mJy")
	doJSON(t, s, http.MethodPost, "/api/catalogues/"+id+"/targets",
		map[string]any{"id": 1, "ra": 150.1, "dec": 2.2, "z": 1.5})

	csvData := "id,label,flux,flux_error,unit,code,wavelength\n" +
		"1,A,1000,100,uJy,1,\n" + // valid
		"9,A,2000,500,uJy,1,\n" + // unknown target
		"1,B,3000,400,uJy,,\n" // no binding at all
	rec := uploadCSV(t, s, "/api/catalogues/"+id+"/observations/csv", csvData)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp loadResultResponse
	decodeBody(t, rec, &resp)
	if resp.Processed != 3 {
		t.Errorf("Processed = %d, want 3", resp.Processed)
	}
	if resp.Applied != 1 {
		t.Errorf("Applied = %d, want 1", resp.Applied)
	}
	if len(resp.Failed) != 2 {
		t.Fatalf("Failed = %v, want 2 rows", resp.Failed)
	}
	if resp.Failed[0].Line != 3 || resp.Failed[1].Line != 4 {
		t.Errorf("failed lines = %d,%d, want 3,4", resp.Failed[0].Line, resp.Failed[1].Line)
	}
}

func TestUploadCSV_MissingFile(t *testing.T) {
	s := newTestServer(t)
	id := createCatalogue(t, s, "nofile", "mJy")

	req := httptest.NewRequest(http.MethodPost, "/api/catalogues/"+id+"/targets/csv", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
