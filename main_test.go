package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"papershelf/config"
	"papershelf/services"
	"papershelf/storage"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DataDir:      t.TempDir(),
		DBFile:       "test.db",
		MaxOpenConns: 5,
	}
	store, err := storage.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ingest := services.NewIngestService(cfg, store, zap.NewNop())

	router := gin.New()
	setupPaperRoutes(router, ingest, store, zap.NewNop())
	setupHealthRoutes(router, store, zap.NewNop())
	return router, cfg
}

func postPaper(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/papers/", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddPaperEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	src := filepath.Join(t.TempDir(), "curcumin.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))

	w := postPaper(t, router, map[string]string{"path": src})
	require.Equal(t, http.StatusOK, w.Code)

	var result services.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Stored)
	assert.Equal(t, "Paper added successfully: curcumin", result.Message)
}

func TestAddPaperCancellation(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postPaper(t, router, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result services.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Stored)
	assert.Equal(t, "No file selected", result.Message)
}

func TestAddPaperRejectsURL(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postPaper(t, router, map[string]string{"url": "https://example.org/a.pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPapersOrdering(t *testing.T) {
	router, _ := setupTestRouter(t)

	srcDir := t.TempDir()
	for i := 1; i <= 3; i++ {
		src := filepath.Join(srcDir, fmt.Sprintf("paper-%d.pdf", i))
		require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0o644))
		w := postPaper(t, router, map[string]string{"path": src})
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/papers/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var papers []struct {
		ID      uint   `json:"id"`
		Title   string `json:"title"`
		PDFPath string `json:"pdf_path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &papers))
	require.Len(t, papers, 3)
	assert.Equal(t, "paper-3", papers[0].Title)
	assert.Equal(t, "paper-1", papers[2].Title)
}

func TestReadFileEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	content := []byte("%PDF-1.7 round trip")
	src := filepath.Join(t.TempDir(), "read-me.pdf")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	w := postPaper(t, router, map[string]string{"path": src})
	require.Equal(t, http.StatusOK, w.Code)
	var result services.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	req := httptest.NewRequest(http.MethodGet, "/papers/file?path="+result.Path, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, content, w.Body.Bytes())
}

func TestReadFileMissing(t *testing.T) {
	router, cfg := setupTestRouter(t)

	missing := filepath.Join(cfg.PapersDir(), "missing.pdf")
	req := httptest.NewRequest(http.MethodGet, "/papers/file?path="+missing, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Database connected. Papers stored: 0", body["message"])
}
