package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookdetector/internal/capture"
	"bookdetector/internal/catalog"
	"bookdetector/internal/deps"
	"bookdetector/internal/detector"
	"bookdetector/internal/history"
	"bookdetector/internal/logging"
	"bookdetector/internal/ocr"
	"bookdetector/internal/preview"
)

func (s *Server) handleStatus(c *gin.Context) {
	current := s.svc.Catalog()
	c.JSON(http.StatusOK, StatusResponse{
		StartedAt:      formatTime(s.started),
		Uptime:         time.Since(s.started).Round(time.Second).String(),
		CatalogEntries: current.Len(),
		CatalogSource:  string(s.svc.CatalogSource()),
		CachePath:      s.cfg.Catalog.CachePath,
		Folders:        s.cfg.Catalog.Folders,
		OCREngine:      s.svc.OCREngine(),
		HistoryEnabled: s.svc.HistoryEnabled(),
		Dependencies:   deps.CheckBinaries(deps.Requirements(s.cfg)),
	})
}

func (s *Server) handleCatalog(c *gin.Context) {
	entries := s.svc.Catalog().Entries()
	if entries == nil {
		entries = []catalog.Entry{}
	}
	c.JSON(http.StatusOK, CatalogResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleRebuild(c *gin.Context) {
	started := time.Now()
	rebuilt, err := s.svc.Rebuild(c.Request.Context())
	if err != nil && (rebuilt == nil || !errors.Is(err, catalog.ErrCacheWrite)) {
		s.fail(c, err)
		return
	}
	resp := RebuildResponse{Count: rebuilt.Len(), Elapsed: time.Since(started).Round(time.Millisecond).String()}
	if err != nil {
		resp.CacheWarning = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMatches(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		writeError(c, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := s.cfg.Lookup.Limit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	minSimilarity := s.cfg.Lookup.MinSimilarity
	if raw := c.Query("min"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeError(c, http.StatusBadRequest, "min must be a number between 0 and 1")
			return
		}
		minSimilarity = parsed
	}

	result, err := s.svc.LookupWithin(c.Request.Context(), history.SourceAPI, query, limit, minSimilarity)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleOCR(c *gin.Context) {
	upload, err := c.FormFile("image")
	if err != nil {
		writeError(c, http.StatusBadRequest, "multipart field image is required")
		return
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = ".png"
	}

	tmpDir, err := os.MkdirTemp("", "bookdetector-upload-")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	target := filepath.Join(tmpDir, "upload"+ext)
	if err := c.SaveUploadedFile(upload, target); err != nil {
		s.fail(c, err)
		return
	}
	result, err := s.svc.RecognizeFile(c.Request.Context(), target)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleScan(c *gin.Context) {
	result, err := s.svc.Scan(c.Request.Context(), "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handlePreview(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		writeError(c, http.StatusBadRequest, "missing query parameter path")
		return
	}
	if !s.inCatalog(path) {
		writeError(c, http.StatusNotFound, "path is not in the catalog")
		return
	}
	thumb, err := s.renderer.Thumbnail(c.Request.Context(), path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.File(thumb)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	lookups, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := HistoryResponse{Lookups: make([]HistoryEntry, 0, len(lookups))}
	for _, l := range lookups {
		resp.Lookups = append(resp.Lookups, FromLookup(l))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) inCatalog(path string) bool {
	current := s.svc.Catalog()
	for i := 0; i < current.Len(); i++ {
		if current.At(i).SourcePath == path {
			return true
		}
	}
	return false
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, detector.ErrHistoryDisabled):
		status = http.StatusNotFound
	case errors.Is(err, preview.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, ocr.ErrEngineUnavailable), errors.Is(err, capture.ErrNoCamera):
		status = http.StatusServiceUnavailable
	case c.Request.Context().Err() != nil:
		status = http.StatusRequestTimeout
	}
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(c.Request.Context(), s.logger), "api handler failed", "api_handler_failed",
			logging.String("path", c.FullPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "request returned an error to the client"),
		)
	}
	writeError(c, status, err.Error())
}
