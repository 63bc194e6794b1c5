package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookdetector/internal/api"
	"bookdetector/internal/config"
	"bookdetector/internal/detector"
	"bookdetector/internal/logging"
	"bookdetector/internal/testsupport"
)

type stubRecognizer struct{ text string }

func (s stubRecognizer) Recognize(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return s.text, nil
}

type stubCapturer struct{}

func (stubCapturer) Capture(_ context.Context, dst string) error {
	return os.WriteFile(dst, []byte("frame"), 0o644)
}

type matchBody struct {
	Query     string `json:"query"`
	Text      string `json:"text"`
	HistoryID string `json:"history_id"`
	Matches   []struct {
		Title  string  `json:"title"`
		Author string  `json:"author"`
		BookID string  `json:"book_id"`
		Score  float64 `json:"score"`
	} `json:"matches"`
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*api.Server, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteBooks(t, cfg.Catalog.Folders[0], testsupport.ScenarioBooks...)
	svc, err := detector.New(cfg, logging.NewNop(),
		detector.WithRecognizer(stubRecognizer{text: "Ramayanam"}),
		detector.WithCapturer(stubCapturer{}),
	)
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	srv, err := api.NewServer(cfg, svc, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, cfg
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestMatchesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/matches?q="+url.QueryEscape("Mahabharat"), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
	var body matchBody
	decode(t, rec, &body)
	if len(body.Matches) != 2 {
		t.Fatalf("unexpected matches: %+v", body.Matches)
	}
	ids := map[string]bool{body.Matches[0].BookID: true, body.Matches[1].BookID: true}
	if !ids["B001"] || !ids["B003"] {
		t.Fatalf("expected both Mahabharatam entries, got %+v", body.Matches)
	}
	if body.HistoryID == "" {
		t.Fatal("expected lookup recorded")
	}

	rec = do(t, h, http.MethodGet, "/api/matches?q=Mahabharat&limit=5&min=0", nil, "")
	decode(t, rec, &body)
	if len(body.Matches) != 3 {
		t.Fatalf("expected every entry with min=0, got %d", len(body.Matches))
	}

	for _, target := range []string{"/api/matches", "/api/matches?q=x&limit=0", "/api/matches?q=x&min=2"} {
		if rec := do(t, h, http.MethodGet, target, nil, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestCatalogAndRebuild(t *testing.T) {
	srv, cfg := newTestServer(t)
	h := srv.Handler()

	var catalogResp api.CatalogResponse
	decode(t, do(t, h, http.MethodGet, "/api/catalog", nil, ""), &catalogResp)
	if catalogResp.Count != 3 {
		t.Fatalf("unexpected catalog: %+v", catalogResp)
	}
	for _, e := range catalogResp.Entries {
		if e.BookID == "B002" && e.Author != "" {
			t.Fatalf("expected unknown author stored empty, got %+v", e)
		}
	}

	testsupport.WriteBooks(t, cfg.Catalog.Folders[0], "Bhagavatam_Potana_1970_900_B004.pdf", "notes.txt")
	rec := do(t, h, http.MethodPost, "/api/catalog/rebuild", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("rebuild status %d: %s", rec.Code, rec.Body.String())
	}
	var rebuilt api.RebuildResponse
	decode(t, rec, &rebuilt)
	if rebuilt.Count != 4 {
		t.Fatalf("expected 4 entries after rebuild, got %d", rebuilt.Count)
	}

	var status api.StatusResponse
	decode(t, do(t, h, http.MethodGet, "/api/status", nil, ""), &status)
	if status.CatalogEntries != 4 || status.CatalogSource != "scan" || !status.HistoryEnabled || len(status.Dependencies) == 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestRebuildKeepsNewCatalogWhenCacheWriteFails(t *testing.T) {
	srv, cfg := newTestServer(t, testsupport.WithStrictCache())
	h := srv.Handler()

	// A directory at the cache path makes the atomic rename fail.
	if err := os.Remove(cfg.Catalog.CachePath); err != nil {
		t.Fatalf("remove cache: %v", err)
	}
	if err := os.Mkdir(cfg.Catalog.CachePath, 0o755); err != nil {
		t.Fatalf("mkdir at cache path: %v", err)
	}
	testsupport.WriteBooks(t, cfg.Catalog.Folders[0], "Bhagavatam_Potana_1970_900_B004.pdf")

	rec := do(t, h, http.MethodPost, "/api/catalog/rebuild", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when only the cache write fails, got %d: %s", rec.Code, rec.Body.String())
	}
	var rebuilt api.RebuildResponse
	decode(t, rec, &rebuilt)
	if rebuilt.Count != 4 || rebuilt.CacheWarning == "" {
		t.Fatalf("expected new catalog with a cache warning, got %+v", rebuilt)
	}

	var catalogResp api.CatalogResponse
	decode(t, do(t, h, http.MethodGet, "/api/catalog", nil, ""), &catalogResp)
	if catalogResp.Count != 4 {
		t.Fatalf("expected rebuilt catalog served, got %d entries", catalogResp.Count)
	}
}

func TestOCRUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "cover.jpg")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("jpeg bytes"))
	_ = form.Close()

	rec := do(t, srv.Handler(), http.MethodPost, "/api/ocr", &buf, form.FormDataContentType())
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body matchBody
	decode(t, rec, &body)
	if body.Text != "Ramayanam" || len(body.Matches) != 1 || body.Matches[0].BookID != "B002" {
		t.Fatalf("unexpected OCR result: %+v", body)
	}

	if rec := do(t, srv.Handler(), http.MethodPost, "/api/ocr", nil, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without upload, got %d", rec.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/scan", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body matchBody
	decode(t, rec, &body)
	if len(body.Matches) != 1 || body.Matches[0].Title != "Ramayanam" {
		t.Fatalf("unexpected scan result: %+v", body)
	}
}

func TestPreviewOnlyServesCatalogPaths(t *testing.T) {
	srv, cfg := newTestServer(t)
	h := srv.Handler()

	cover := filepath.Join(cfg.Catalog.Folders[0], "Kathalu_Chalam_1950_120_K1.png")
	testsupport.WritePNG(t, cover, 600, 800)
	if rec := do(t, h, http.MethodGet, "/api/preview?path="+url.QueryEscape(cover), nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before rebuild, got %d", rec.Code)
	}
	do(t, h, http.MethodPost, "/api/catalog/rebuild", nil, "")

	rec := do(t, h, http.MethodGet, "/api/preview?path="+url.QueryEscape(cover), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 400 {
		t.Fatalf("unexpected preview size %dx%d", b.Dx(), b.Dy())
	}

	if rec := do(t, h, http.MethodGet, "/api/preview", nil, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without path, got %d", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, http.MethodGet, "/api/matches?q=Ramayan", nil, "")
	do(t, h, http.MethodGet, "/api/matches?q=Mahabharat", nil, "")

	var resp api.HistoryResponse
	decode(t, do(t, h, http.MethodGet, "/api/history?limit=1", nil, ""), &resp)
	if len(resp.Lookups) != 1 || resp.Lookups[0].Query != "Mahabharat" || resp.Lookups[0].Source != "api" {
		t.Fatalf("unexpected history: %+v", resp.Lookups)
	}
}

func TestHistoryDisabledEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, testsupport.WithHistoryDisabled())
	rec := do(t, srv.Handler(), http.MethodGet, "/api/history", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body api.ErrorResponse
	decode(t, rec, &body)
	if body.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv.Handler(), http.MethodGet, "/api/nope", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + srv.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}
