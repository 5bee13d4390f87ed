package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/dgallion1/tenderdoc/internal/extractor"
	"github.com/dgallion1/tenderdoc/internal/session"
)

// upload is a received document.
type upload struct {
	filename string
	data     []byte
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"document_title":    catalog.DocumentTitle,
		"sections":          catalog.All(),
		"default_selection": catalog.DefaultSelection,
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": session.SuggestedQuestions(),
	})
}

// handleParse parses a multipart upload or a raw text body and returns the
// structured document. Nothing is stored.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var up upload
	var ok bool
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		up, ok = s.readUpload(w, r)
	} else {
		up, ok = s.readTextBody(w, r)
	}
	if !ok {
		return
	}

	doc, ok := s.parseUpload(w, up)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// readUpload reads the "file" field of a multipart form.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extractor.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return upload{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{filename: filename, data: data}, true
}

// readTextBody treats the whole request body as a plain text document.
func (s *Server) readTextBody(w http.ResponseWriter, r *http.Request) (upload, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{filename: "body.txt", data: data}, true
}

// parseUpload extracts text and runs the section parser.
func (s *Server) parseUpload(w http.ResponseWriter, up upload) (*doctree.Document, bool) {
	text, err := extractor.ExtractFile(bytes.NewReader(up.data), up.filename, extractor.Options{
		PdftotextFallback: s.cfg.PDFFallbackPdftotext,
	})
	if errors.Is(err, extractor.ErrNoText) {
		jsonError(w, "no text could be extracted from "+up.filename, http.StatusUnprocessableEntity)
		return nil, false
	}
	if err != nil {
		s.log.Warn("extraction failed", "filename", up.filename, "error", err)
		jsonError(w, "failed to extract text: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}

	doc := s.parser.Parse(text)
	s.log.Info("document parsed",
		"filename", up.filename,
		"bytes", len(up.data),
		"sections_found", len(doc.Sections),
		"missing", strings.Join(doc.Missing, ","),
	)
	return doc, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
