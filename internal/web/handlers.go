package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"orderbridge/internal/export"
	"orderbridge/internal/logging"
)

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleImportOrders accepts a multipart CSV upload, spools it to a temp
// file, and runs the import batch. The response is the full per-row report
// regardless of how many rows failed.
func (s *Server) handleImportOrders(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		s.respondError(w, r, &ValidationError{Msg: "invalid or oversized upload: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, &ValidationError{Msg: "no file uploaded"})
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.cfg.Upload.TmpDir, "orders-*.csv")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("spool upload: %w", err))
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.respondError(w, r, fmt.Errorf("spool upload: %w", err))
		return
	}

	result, err := s.importer.Run(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.metrics.ImportBatches.Inc()
	s.metrics.CatalogSize.Set(float64(s.catalog.Size()))

	if s.history != nil {
		if err := s.history.RecordBatch(r.Context(), result); err != nil {
			// The batch already ran; a ledger miss is not worth a 500.
			logging.FromContext(r.Context()).Error("record import batch", "batch_id", result.BatchID, "error", err)
		}
	}

	writeJSON(w, result)
}

// handleExportOrders streams the filtered order listing as a CSV download.
// Query validation happens before the first byte goes out; after that, a
// mid-stream failure truncates the response.
func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if values.Get("status") == "" {
		values.Set("status", "completed")
	}

	q, err := export.ParseQuery(values)
	if err != nil {
		s.respondError(w, r, &ValidationError{Msg: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(time.Now())+`"`)
	w.Header().Set("Cache-Control", "no-store")

	if err := s.exporter.Run(r.Context(), w, q); err != nil {
		// Headers and the BOM are out; all we can do is stop and log.
		logging.FromContext(r.Context()).Error("export stream aborted", "error", err)
	}
}

// handleListOrders forwards the order listing to the upstream API.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	body, err := s.client.Forward(r.Context(), "/orders", r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleListProducts forwards the product listing to the upstream API.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	body, err := s.client.Forward(r.Context(), "/products", r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleCatalogRefresh forces a product catalog rebuild.
func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	m, err := s.catalog.Map(r.Context(), true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.metrics.CatalogRefreshes.Inc()
	s.metrics.CatalogSize.Set(float64(len(m)))

	writeJSON(w, map[string]int{"products": len(m)})
}

// handleListImports lists recent import batches from the history ledger.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, &NotFoundError{Msg: "import history is not enabled"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, r, &ValidationError{Msg: "limit must be a positive integer"})
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	batches, err := s.history.RecentBatches(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]interface{}{"batches": batches})
}
