package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flashflow/internal/usecase/pipeline"
)

type Handler struct {
	svc *pipeline.Service
}

func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{svc: svc}
}

type createVideoRequest struct {
	Title             string `json:"title"`
	ScriptNotRequired bool   `json:"script_not_required"`
	ConceptID         string `json:"concept_id"`
	ProductID         string `json:"product_id"`
	PostingAccountID  string `json:"posting_account_id"`
}

type releaseRequest struct {
	Force bool `json:"force"`
}

type transitionRequest struct {
	TargetStatus   string `json:"target_status"`
	Force          bool   `json:"force"`
	FinalVideoURL  string `json:"final_video_url"`
	PostedURL      string `json:"posted_url"`
	PostedPlatform string `json:"posted_platform"`
}

type attachScriptRequest struct {
	Text    string `json:"text"`
	Version int    `json:"version"`
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createVideoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := h.svc.CreateVideo(r.Context(), pipeline.CreateVideoInput{
		Title:             req.Title,
		ScriptNotRequired: req.ScriptNotRequired,
		ConceptID:         req.ConceptID,
		ProductID:         req.ProductID,
		PostingAccountID:  req.PostingAccountID,
		Actor:             actor,
		CorrelationID:     correlationID(r.Context()),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, detail)
}

func (h *Handler) listVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var statuses []string
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if s := strings.TrimSpace(part); s != "" {
				statuses = append(statuses, strings.ToUpper(s))
			}
		}
	}

	items, err := h.svc.ListVideos(r.Context(), pipeline.ListVideosInput{
		Statuses:        statuses,
		ClaimedBy:       query.Get("claimed_by"),
		IncludeTerminal: query.Get("include_terminal") == "true",
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, items)
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, detail)
}

func (h *Handler) claimVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	lease, err := h.svc.ClaimVideo(r.Context(), pipeline.ClaimVideoInput{
		VideoID:       chi.URLParam(r, "id"),
		Actor:         actor,
		CorrelationID: correlationID(r.Context()),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, lease)
}

func (h *Handler) releaseVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req releaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.ReleaseVideo(r.Context(), pipeline.ReleaseVideoInput{
		VideoID:       chi.URLParam(r, "id"),
		Actor:         actor,
		Force:         req.Force,
		CorrelationID: correlationID(r.Context()),
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"released": true})
}

func (h *Handler) transitionVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.TransitionVideo(r.Context(), pipeline.TransitionVideoInput{
		VideoID:        chi.URLParam(r, "id"),
		TargetStatus:   req.TargetStatus,
		Actor:          actor,
		Force:          req.Force,
		FinalVideoURL:  req.FinalVideoURL,
		PostedURL:      req.PostedURL,
		PostedPlatform: req.PostedPlatform,
		CorrelationID:  correlationID(r.Context()),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, result)
}

func (h *Handler) attachScript(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req attachScriptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.AttachScript(r.Context(), pipeline.AttachScriptInput{
		VideoID:       chi.URLParam(r, "id"),
		Text:          req.Text,
		Version:       req.Version,
		Actor:         actor,
		CorrelationID: correlationID(r.Context()),
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"attached": true})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	since, ok := parseTimeParam(w, r, query.Get("since"), "since")
	if !ok {
		return
	}
	until, ok := parseTimeParam(w, r, query.Get("until"), "until")
	if !ok {
		return
	}

	items, err := h.svc.ListEvents(r.Context(), pipeline.ListEventsInput{
		VideoID:   chi.URLParam(r, "id"),
		EventType: query.Get("event_type"),
		Since:     since,
		Until:     until,
		Limit:     limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, items)
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := strings.TrimSpace(r.Header.Get(headerActor))
	if actor == "" {
		writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, "X-Actor header is required", nil)
		return "", false
	}
	return actor, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}

func parseTimeParam(w http.ResponseWriter, r *http.Request, raw string, name string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, name+" must be RFC3339", nil)
		return nil, false
	}
	return &parsed, true
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, details := mapError(err)
	writeError(w, r, status, code, err.Error(), details)
}
