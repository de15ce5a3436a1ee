package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
	"github.com/tcghub/poke-tournaments/services"
	"github.com/tcghub/poke-tournaments/session"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// Home serves the landing page data: the next few published tournaments.
func (h *TournamentHandler) Home(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.Upcoming(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"upcoming_tournaments": tournaments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournaments": tournaments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Dashboard lists the signed-in shop's own tournaments, drafts included.
func (h *TournamentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	shopID := s.UserID
	tournaments, err := h.tournamentService.List(r.Context(), repositories.ListTournamentsFilter{
		ShopID: &shopID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournaments": tournaments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	count, err := h.tournamentService.RegistrationCount(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament":         tournament,
		"registration_count": count,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), s.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament": tournament,
		"message":    "Tournament created successfully",
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id := chi.URLParam(r, "tournamentID")

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), s.UserID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament": tournament,
		"message":    "Tournament updated successfully",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id := chi.URLParam(r, "tournamentID")

	if err := h.tournamentService.Delete(r.Context(), s.UserID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "Tournament deleted successfully"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Registrations lists a tournament's sign-ups for its owning shop.
func (h *TournamentHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	id := chi.URLParam(r, "tournamentID")

	registrations, err := h.tournamentService.Registrations(r.Context(), s.UserID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"registrations": registrations}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// parseListFilter reads the browse-page filters. Repeated tags[] values
// narrow the result: a tournament matches only if it carries every tag.
func parseListFilter(r *http.Request) repositories.ListTournamentsFilter {
	var filter repositories.ListTournamentsFilter

	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		filter.Status = &status
	}
	if raw := query.Get("shop"); raw != "" {
		shopID := raw
		filter.ShopID = &shopID
	}

	tags := query["tags[]"]
	if len(tags) == 0 {
		tags = query["tags"]
	}
	filter.Tags = tags

	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	return filter
}
