package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"draftsmith/internal/core"
	"draftsmith/internal/enhance"
	"draftsmith/internal/promo"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerate runs the full pipeline for a generation request.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req core.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type regenerateRequest struct {
	Prompt   string `json:"prompt"`
	Tone     string `json:"tone"`
	Provider string `json:"provider"`
	Index    int    `json:"index"`
}

// handleRegenerateImage produces a fresh image from a custom prompt.
func (s *Server) handleRegenerateImage(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Index < 0 {
		writeError(w, http.StatusBadRequest, "index must be >= 0")
		return
	}
	if limit := s.cfg.Images.MaxPerArticle; limit > 0 && req.Index >= limit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("index must be below max images per article (%d)", limit))
		return
	}

	engine, err := s.imageEngine(req.Provider)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, engine.Regenerate(r.Context(), req.Prompt, req.Tone, req.Index))
}

type integrateRequest struct {
	Content string `json:"content"`
	Links   string `json:"links"`
}

type integrateResponse struct {
	Content  string `json:"content"`
	Method   string `json:"method"` // "llm" or "string"
	Inserted int    `json:"inserted,omitempty"`
}

// handleIntegrateLinks weaves internal links into article markdown. The LLM
// pass is attempted first; when it declines or fails, deterministic string
// insertion takes over.
func (s *Server) handleIntegrateLinks(w http.ResponseWriter, r *http.Request) {
	var req integrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	links := enhance.ParseLinks(req.Links)
	if len(links) == 0 {
		writeError(w, http.StatusBadRequest, "no valid links; use \"anchor text: /url\" entries")
		return
	}

	if out := s.writer.IntegrateLinks(r.Context(), req.Content, req.Links); out != "" {
		writeJSON(w, http.StatusOK, integrateResponse{Content: out, Method: "llm"})
		return
	}

	// String fallback works on a single-section draft shape.
	draft := &core.ArticleDraft{Sections: []core.Section{{Content: req.Content}}}
	inserted := enhance.InsertLinks(draft, links)
	writeJSON(w, http.StatusOK, integrateResponse{
		Content:  draft.Sections[0].Content,
		Method:   "string",
		Inserted: inserted,
	})
}

// handlePromotions lists the promotable project catalog.
func (s *Server) handlePromotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": promo.Catalog(),
		"styles":   promo.Styles,
	})
}
