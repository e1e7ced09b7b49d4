package handlers

import (
	"net/http"
)

// ==================== Public Pages ====================

// PageData is the common payload for the voter-facing templates
type PageData struct {
	LogoURL string
}

// pageData resolves the shared logo for page rendering. A store outage
// must never block a page, so errors collapse to an empty logo.
func (h *Handlers) pageData(r *http.Request) PageData {
	logo, err := h.Ballot.GetLogoURL(r.Context())
	if err != nil {
		logo = ""
	}
	return PageData{LogoURL: logo}
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.Execute(w, h.pageData(r))
}

func (h *Handlers) handleVotePage(w http.ResponseWriter, r *http.Request) {
	h.templates.Vote.Execute(w, h.pageData(r))
}

func (h *Handlers) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	h.templates.Results.Execute(w, h.pageData(r))
}

// ==================== Session API ====================

// handleGetSession returns the current workflow snapshot for this device
func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Session.View(r.Context(), deviceID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleStartSession begins (or resumes, via the saved draft) voting
func (h *Handlers) handleStartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Session.Start(r.Context(), deviceID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleAnswer records one answer
func (h *Handlers) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Session.Answer(r.Context(), deviceID(r), req.QuestionID, req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleSubmit finalizes the ballot. An incomplete ballot is not an
// error: the returned view simply stays in the voting state.
func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	view, err := h.Session.Submit(r.Context(), deviceID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleResetSession discards the in-memory session. The device lock, if
// set, survives.
func (h *Handlers) handleResetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Session.Reset(r.Context(), deviceID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleGetLogo serves the shared logo URL for the entry screen
func (h *Handlers) handleGetLogo(w http.ResponseWriter, r *http.Request) {
	url, err := h.Ballot.GetLogoURL(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, LogoResponse{URL: url})
}
