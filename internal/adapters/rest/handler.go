// Package rest exposes the inventory service, announcement board, report
// exporter, access gate and contact relay over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"medghor/internal/blob"
	"medghor/internal/contact"
	"medghor/internal/core"
	"medghor/internal/gate"
	"medghor/internal/listview"
	"medghor/internal/report"
	"medghor/pkg/domain"
)

// TokenHeader carries the office session token on gated requests.
const TokenHeader = "X-Office-Token"

// Handler routes the public API. Board and contact endpoints are open; the
// inventory and report endpoints require a live office session.
type Handler struct {
	Service *core.Service
	Gate    gate.Gate
	Reports report.Scheduler
	Blobs   blob.Store
	Contact *contact.Relay
	Logger  core.Logger

	// NowFn drives board status derivation; defaults to time.Now.
	NowFn func() time.Time
}

// NewHandler constructs a handler around the service with a noop logger.
func NewHandler(service *core.Service) *Handler {
	return &Handler{
		Service: service,
		Logger:  core.NoopLogger(),
		NowFn:   time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.NowFn != nil {
		return h.NowFn()
	}
	return time.Now()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "inventory service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case path == "/api/v1/session":
		h.handleSession(w, r)
	case path == "/api/v1/contact":
		h.handleContact(w, r)
	case strings.HasPrefix(path, "/api/v1/board/"):
		h.handleBoard(w, r, strings.TrimPrefix(path, "/api/v1/board/"))
	case strings.HasPrefix(path, "/api/v1/inventory/"):
		h.handleInventory(w, r, strings.TrimPrefix(path, "/api/v1/inventory/"))
	case path == "/api/v1/reports" || strings.HasPrefix(path, "/api/v1/reports/"):
		h.handleReports(w, r, path)
	default:
		http.NotFound(w, r)
	}
}

// authorized reports whether the request carries a live office token. When
// no gate is configured every request passes, which keeps tests and the
// memory profile simple.
func (h *Handler) authorized(r *http.Request) bool {
	if h.Gate == nil {
		return true
	}
	return h.Gate.Check(r.Header.Get(TokenHeader))
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if h.Gate == nil {
		writeError(w, http.StatusNotFound, "session gate not configured")
		return
	}
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Passphrase string `json:"passphrase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid session request payload")
			return
		}
		token, err := h.Gate.Grant(payload.Passphrase)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "access denied")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"token": token})
	case http.MethodDelete:
		h.Gate.Revoke(r.Header.Get(TokenHeader))
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	if h.Contact == nil {
		writeError(w, http.StatusNotFound, "contact relay not configured")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var msg contact.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact payload")
		return
	}
	if err := h.Contact.Send(r.Context(), msg); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request, remainder string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	c := domain.Collection(remainder)
	if !domain.Known(c) || strings.Contains(remainder, "/") {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = parsed
	}
	records, err := h.Service.List(r.Context(), c)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	boardPage := listview.BuildPage(c, records, page, h.now())
	writeJSON(w, http.StatusOK, toBoardPageDTO(boardPage))
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request, remainder string) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "office session required")
		return
	}

	segments := strings.Split(remainder, "/")
	c := domain.Collection(segments[0])
	if !domain.Known(c) {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	switch len(segments) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			records, err := h.Service.List(r.Context(), c)
			if err != nil {
				h.writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"records": toRecordDTOs(records)})
		case http.MethodPost:
			fields, ok := h.decodeFields(w, r)
			if !ok {
				return
			}
			id, err := h.Service.Add(r.Context(), c, fields)
			if err != nil {
				h.writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"id": id})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case 2:
		id := segments[1]
		switch r.Method {
		case http.MethodPut:
			fields, ok := h.decodeFields(w, r)
			if !ok {
				return
			}
			if err := h.Service.Edit(r.Context(), c, id, fields); err != nil {
				h.writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if err := h.Service.Remove(r.Context(), c, id); err != nil {
				h.writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request, path string) {
	if h.Reports == nil {
		writeError(w, http.StatusNotFound, "report exporter not configured")
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "office session required")
		return
	}

	if path == "/api/v1/reports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		record, err := h.Reports.Enqueue(r.Context(), "office")
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"report": record})
		return
	}

	remainder := strings.TrimPrefix(path, "/api/v1/reports/")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if id, ok := strings.CutSuffix(remainder, "/download"); ok {
		h.handleReportDownload(w, r, id)
		return
	}
	if strings.Contains(remainder, "/") {
		http.NotFound(w, r)
		return
	}
	record, ok := h.Reports.Get(remainder)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": record})
}

func (h *Handler) handleReportDownload(w http.ResponseWriter, r *http.Request, id string) {
	record, ok := h.Reports.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if record.Status != report.StatusSucceeded {
		writeError(w, http.StatusConflict, fmt.Sprintf("report is %s", record.Status))
		return
	}
	if h.Blobs == nil {
		writeError(w, http.StatusInternalServerError, "artifact store not configured")
		return
	}
	info, rc, err := h.Blobs.Get(r.Context(), record.BlobKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "report artifact missing")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "artifact store unavailable")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warn("report download aborted", "id", id, "error", err)
	}
}

func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (core.RecordFields, bool) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid record payload")
		return core.RecordFields{}, false
	}
	return payload.toFields(), true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var invalid domain.ValidationError
	var notFound domain.NotFoundError
	var unknown domain.UnknownCollectionError
	var unavailable domain.StoreUnavailableError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, invalid.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, unknown.Error())
	case errors.As(err, &unavailable):
		h.Logger.Error("store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	case errors.Is(err, contact.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, "too many submissions")
	case errors.Is(err, contact.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "contact relay unavailable")
	default:
		h.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusBadGateway, "delivery failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
