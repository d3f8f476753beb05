package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/netkit/internal/report"
	"github.com/user/netkit/internal/storage"
	"github.com/user/netkit/internal/toolkit"
	"github.com/user/netkit/internal/util"
)

const maxBodyBytes = 1 << 20

// Handlers contains HTTP handlers.
type Handlers struct {
	tk      *toolkit.Toolkit
	history *storage.HistoryStorage
	config  *util.Config
	started time.Time
}

// NewHandlers creates new handlers.
func NewHandlers(tk *toolkit.Toolkit, history *storage.HistoryStorage, cfg *util.Config) *Handlers {
	return &Handlers{
		tk:      tk,
		history: history,
		config:  cfg,
		started: time.Now(),
	}
}

// APIRunOperation runs the operation named by the last path segment with
// the JSON request body as its parameters.
func (h *Handlers) APIRunOperation(w http.ResponseWriter, r *http.Request) {
	op := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	if op == "" || strings.Contains(op, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, fmt.Errorf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("failed to read request body: %w", err), http.StatusBadRequest)
		return
	}

	// Probe failures come back inside result; err means a bad request.
	result, err := h.tk.Dispatch(r.Context(), op, body)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, result)
}

// APIGetTools returns the availability of external tools.
func (h *Handlers) APIGetTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.tk.Tools(r.Context()))
}

// APIGetOperations lists the operation names accepted by APIRunOperation.
func (h *Handlers) APIGetOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, toolkit.Operations())
}

// APIGetHistory returns journaled results, newest first.
func (h *Handlers) APIGetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, errors.New("history is disabled"), http.StatusNotFound)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if ln, err := strconv.Atoi(l); err == nil && ln > 0 && ln <= 500 {
			limit = ln
		}
	}

	var (
		entries interface{}
		err     error
	)
	if op := r.URL.Query().Get("operation"); op != "" {
		entries, err = h.history.ByOperation(op, limit)
	} else {
		entries, err = h.history.Recent(limit)
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries)
}

// APIGetStatus returns server status.
func (h *Handlers) APIGetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"version":         toolkit.Version,
		"uptime_seconds":  int64(time.Since(h.started).Seconds()),
		"history_enabled": h.history != nil,
	}

	if h.history != nil {
		if count, err := h.history.Count(); err == nil {
			status["history_entries"] = count
		}
	}

	writeJSON(w, status)
}

// DownloadReport generates and downloads a Markdown report of the journal.
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, errors.New("history is disabled"), http.StatusNotFound)
		return
	}

	window := 24 * time.Hour
	if s := r.URL.Query().Get("since"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			writeError(w, fmt.Errorf("invalid since: %w", err), http.StatusBadRequest)
			return
		}
		window = d
	}

	data, err := report.NewGenerator(h.history).Generate(time.Now().Add(-window))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	content := report.FormatMarkdown(data)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=netkit_report.md")
	w.Write([]byte(content))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
