package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"example.com/galaxyfit/internal/domain"
)

type templateRequest struct {
	Title            string       `json:"title"`
	Description      *string      `json:"description"`
	RecommendedWeeks *int         `json:"recommendedWeeks"`
	Days             []dayRequest `json:"days"`
}

type dayRequest struct {
	Title     string                `json:"title"`
	DayOfWeek *int                  `json:"dayOfWeek"`
	Cardio    *domain.CardioSession `json:"cardio"`
	Exercises []exerciseRequest     `json:"exercises"`
}

type exerciseRequest struct {
	Name           string                `json:"name"`
	Type           string                `json:"type"`
	Description    string                `json:"description"`
	Notes          string                `json:"notes"`
	RestSeconds    *int                  `json:"restSeconds"`
	IsStandardSets *bool                 `json:"isStandardSets"`
	Sets           []domain.TemplateSet  `json:"sets"`
	Cardio         *domain.CardioSession `json:"cardio"`
}

func (r templateRequest) toInput() domain.TemplateInput {
	input := domain.TemplateInput{
		Title:            r.Title,
		Description:      r.Description,
		RecommendedWeeks: r.RecommendedWeeks,
		Days:             make([]domain.DayInput, 0, len(r.Days)),
	}
	for _, day := range r.Days {
		in := domain.DayInput{
			Title:     day.Title,
			DayOfWeek: day.DayOfWeek,
			Cardio:    day.Cardio,
			Exercises: make([]domain.ExerciseInput, 0, len(day.Exercises)),
		}
		for _, ex := range day.Exercises {
			in.Exercises = append(in.Exercises, domain.ExerciseInput{
				Name:           ex.Name,
				Type:           ex.Type,
				Description:    ex.Description,
				Notes:          ex.Notes,
				RestSeconds:    ex.RestSeconds,
				IsStandardSets: ex.IsStandardSets,
				Sets:           ex.Sets,
				Cardio:         ex.Cardio,
			})
		}
		input.Days = append(input.Days, in)
	}
	return input
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTemplates(w, r)
	case http.MethodPost:
		h.createTemplate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	summaries, err := h.templates.ListSummaries(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[templates] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	views := make([]templateSummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, toTemplateSummaryView(s))
	}
	writeData(w, http.StatusOK, views)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Days == nil {
		writeError(w, http.StatusBadRequest, "Title and days are required")
		return
	}

	detail, err := h.templates.Create(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		// Unlike every other endpoint, creation failures echo the underlying
		// error so client logs carry enough context to debug plan imports.
		log.Printf("[templates] create failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeData(w, http.StatusCreated, toTemplateDetailView(*detail))
}

func (h *Handler) activeTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	detail, err := h.templates.GetActive(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[templates] get active failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch active template")
		return
	}
	if detail == nil {
		writeDataMessage(w, http.StatusOK, nil, "No active template")
		return
	}

	writeData(w, http.StatusOK, toTemplateDetailView(*detail))
}

func (h *Handler) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/templates/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if id, found := strings.CutSuffix(rest, "/activate"); found {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.activateTemplate(w, r, id)
		return
	}

	if strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTemplate(w, r, rest, claims.UserID)
	case http.MethodPut:
		h.updateTemplate(w, r, rest, claims.UserID)
	case http.MethodDelete:
		h.deleteTemplate(w, r, rest, claims.UserID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request, id, userID string) {
	detail, err := h.templates.GetByID(r.Context(), id, userID)
	if err != nil {
		log.Printf("[templates] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch template")
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeData(w, http.StatusOK, toTemplateDetailView(*detail))
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Days == nil {
		writeError(w, http.StatusBadRequest, "Title and days are required")
		return
	}

	detail, err := h.templates.Update(r.Context(), id, userID, req.toInput())
	if err != nil {
		log.Printf("[templates] update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeData(w, http.StatusOK, toTemplateDetailView(*detail))
}

func (h *Handler) activateTemplate(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	activated, err := h.templates.Activate(r.Context(), id, claims.UserID)
	if err != nil {
		log.Printf("[templates] activate failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to activate template")
		return
	}
	if !activated {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeMessage(w, http.StatusOK, "Template activated successfully")
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request, id, userID string) {
	deleted, err := h.templates.Delete(r.Context(), id, userID)
	if err != nil {
		log.Printf("[templates] delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeMessage(w, http.StatusOK, "Template deleted successfully")
}
