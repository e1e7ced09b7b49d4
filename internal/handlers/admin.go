package handlers

import (
	"fmt"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vladicamp/campvote/internal/models"
	"github.com/vladicamp/campvote/internal/repository"
)

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
}

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminPanel(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     "Admin Panel",
		PageTitle: "Admin Panel",
	}
	h.templates.AdminPanel.ExecuteTemplate(w, "admin", data)
}

// ==================== Submissions ====================

func (h *Handlers) handleGetSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Ballot.ListSubmissions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, SubmissionsResponse{Count: len(subs), Submissions: subs})
}

// handleExportCSV streams the ballot export as a CSV download
func (h *Handlers) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Ballot.ExportCSV(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("votes-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// handleClearSubmissions deletes every real submission. The sentinel
// config row survives the purge.
func (h *Handlers) handleClearSubmissions(w http.ResponseWriter, r *http.Request) {
	if err := h.Ballot.ClearSubmissions(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Ballot.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

// ==================== Logo ====================

func (h *Handlers) handleGetAdminLogo(w http.ResponseWriter, r *http.Request) {
	url, err := h.Ballot.GetLogoURL(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, LogoResponse{URL: url})
}

func (h *Handlers) handleSetLogo(w http.ResponseWriter, r *http.Request) {
	var req LogoUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Ballot.SetLogoURL(r.Context(), req.URL); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, LogoResponse{URL: req.URL})
}

func (h *Handlers) handleClearLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.Ballot.ClearLogoURL(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Devices ====================

// handleUnlockDevice clears the vote lock so a device can vote again.
// Without an explicit device_id it unlocks the admin's own browser,
// which is the common case when testing the flow on the event laptop.
func (h *Handlers) handleUnlockDevice(w http.ResponseWriter, r *http.Request) {
	var req UnlockDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id := req.DeviceID
	if id == "" {
		id = deviceID(r)
	}
	if id == "" {
		respondError(w, BadRequest("Missing device_id"))
		return
	}

	if err := h.Session.ResetDevice(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Device unlocked")
}

// ==================== Store Config ====================

func (h *Handlers) handleGetStoreConfig(w http.ResponseWriter, r *http.Request) {
	resp := StoreConfigResponse{Configured: h.Settings.StoreConfigured()}

	cfg, err := h.Settings.StoreOverride(r.Context())
	if err != nil && err != repository.ErrNotFound {
		respondError(w, err)
		return
	}
	resp.URL = cfg.URL

	respondOK(w, resp)
}

func (h *Handlers) handleSetStoreConfig(w http.ResponseWriter, r *http.Request) {
	var req StoreConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.URL == "" || req.Key == "" {
		respondError(w, BadRequest("Invalid store config: url and key are required"))
		return
	}

	cfg := models.StoreConfig{URL: req.URL, Key: req.Key}
	if err := h.Settings.SetStoreOverride(r.Context(), cfg); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, StoreConfigResponse{URL: cfg.URL, Configured: true})
}

// ==================== Share QR ====================

// handleShareQR renders the voting URL as a QR PNG so campers can scan
// their way in from the projector screen
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	baseURL, err := h.Settings.GetBaseURL(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if baseURL == "" {
		respondError(w, NotFound("Base URL is not configured"))
		return
	}

	png, err := qrcode.Encode(baseURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// ==================== HTTP Logging ====================

func (h *Handlers) handleSetHTTPLogging(w http.ResponseWriter, r *http.Request) {
	var req HTTPLoggingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.Enabled {
		h.Log.EnableHTTPLogging()
	} else {
		h.Log.DisableHTTPLogging()
	}
	respondOK(w, HTTPLoggingResponse{Enabled: req.Enabled})
}
