package attachment

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abhishekr/deepchat/internal/storage"
)

func setupRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore err: %v", err)
	}
	handler := New(store, 16<<20)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, dir
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part err: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer err: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestUploadSuccess(t *testing.T) {
	r, dir := setupRouter(t)
	content := []byte("hello attachment")
	body, contentType := multipartUpload(t, "notes.txt", content)

	req := httptest.NewRequest(http.MethodPost, "/upload_attachment", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "success" || payload["filename"] != "notes.txt" {
		t.Fatalf("unexpected envelope: %v", payload)
	}
	if filepath.Dir(payload["path"]) != dir {
		t.Fatalf("stored outside upload dir: %s", payload["path"])
	}

	got, err := os.ReadFile(payload["path"])
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("stored content mismatch")
	}
}

func TestUploadMissingFilePart(t *testing.T) {
	r, _ := setupRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload_attachment", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["message"] != "No file part" {
		t.Fatalf("unexpected error message: %q", payload["message"])
	}
}

func TestUploadDisallowedType(t *testing.T) {
	r, dir := setupRouter(t)
	body, contentType := multipartUpload(t, "malware.exe", []byte("MZ"))

	req := httptest.NewRequest(http.MethodPost, "/upload_attachment", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["message"] != "File type not allowed" {
		t.Fatalf("unexpected error message: %q", payload["message"])
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(entries))
	}
}

func TestUploadTraversalFilename(t *testing.T) {
	r, dir := setupRouter(t)
	body, contentType := multipartUpload(t, "../../etc/passwd.txt", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/upload_attachment", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if filepath.Dir(payload["path"]) != dir {
		t.Fatalf("traversal name escaped upload dir: %s", payload["path"])
	}
}

func TestUploadOversizedBody(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore err: %v", err)
	}
	handler := New(store, 64)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	body, contentType := multipartUpload(t, "big.txt", bytes.Repeat([]byte("a"), 1024))
	req := httptest.NewRequest(http.MethodPost, "/upload_attachment", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("oversized upload left %d files behind", len(entries))
	}
}
