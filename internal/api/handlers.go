// Package api provides HTTP handlers for Gezgin endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gezgin-ai/gezgin/internal/models"
	"github.com/gezgin-ai/gezgin/internal/planner"
)

// signupRequest is the payload for POST /auth/signup.
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.signupHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Email and password are required"))
		return
	}
	if err := s.st.SaveCredential(models.Credential{Name: req.Name, Email: req.Email, Password: req.Password}); err != nil {
		slog.Error("Server.signupHandler: failed to save credential", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create account"))
		return
	}
	slog.Info("Server.signupHandler: account created", "email", req.Email)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Account created", map[string]string{"name": req.Name, "email": req.Email}))
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.loginHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	cred, err := s.st.GetCredential(req.Email)
	if err != nil {
		slog.Error("Server.loginHandler: failed to load credential", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to check credentials"))
		return
	}
	if cred == nil || cred.Password != req.Password {
		slog.Warn("Server.loginHandler: rejected login", "email", req.Email)
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Invalid email or password"))
		return
	}
	slog.Info("Server.loginHandler: login accepted", "email", req.Email)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"name": cred.Name, "email": cred.Email}))
}

func (s *Server) onboardingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.onboardingHandler: processing onboarding request")

	var profile models.PreferenceProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		slog.Warn("Server.onboardingHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := profile.Validate(); err != nil {
		slog.Warn("Server.onboardingHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	token, ok := s.session.TryBegin(planner.SlotPlanGeneration)
	if !ok {
		writeJSONResponse(w, http.StatusConflict, models.Error("A plan is already being generated"))
		return
	}
	plan, err := s.session.CompleteOnboarding(profile)
	s.session.Commit(planner.SlotPlanGeneration, token)
	if err != nil {
		slog.Error("Server.onboardingHandler: failed to generate plan", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate plan"))
		return
	}

	slog.Info("Server.onboardingHandler: plan generated", "planID", plan.ID, "city", profile.City)
	writeJSONResponse(w, http.StatusCreated, models.Success(plan))
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	profile := s.session.Profile()
	if profile == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No profile yet"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"profile": profile,
		"stats": map[string]int{
			"tripsPlanned":  len(s.session.Drafts()),
			"placesVisited": len(s.session.Stamps()),
			"favorites":     len(s.session.Favorites()),
		},
	}))
}

func (s *Server) listPlansHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"plans":        s.session.Drafts(),
		"activePlanId": s.activePlanID(),
	}))
}

func (s *Server) activePlanID() string {
	if active := s.session.ActivePlan(); active != nil {
		return active.ID
	}
	return ""
}

func (s *Server) activePlanHandler(w http.ResponseWriter, r *http.Request) {
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(active))
}

func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan := s.session.Draft(id)
	if plan == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Plan not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(plan))
}

func (s *Server) activatePlanHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.session.LoadDraft(id) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Plan not found"))
		return
	}
	slog.Info("Server.activatePlanHandler: plan activated", "planID", id)
	writeJSONResponse(w, http.StatusOK, models.Success(s.session.ActivePlan()))
}

func (s *Server) deletePlanHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	newActive, deleted := s.session.DeleteDraft(id)
	if !deleted {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Plan not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Plan deleted", map[string]interface{}{
		"activePlan": newActive,
	}))
}

func (s *Server) confirmPlanHandler(w http.ResponseWriter, r *http.Request) {
	plan, err := s.session.ConfirmActivePlan()
	if err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan to confirm"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Plan confirmed", plan))
}

func (s *Server) daySummariesHandler(w http.ResponseWriter, r *http.Request) {
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"days":        planner.Summaries(*active),
		"totalBudget": planner.TotalBudget(*active),
	}))
}

func (s *Server) dayHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"summary":    planner.SummaryForDay(*active, day),
		"activities": planner.ActivitiesForDay(*active, day),
	}))
}

// dayParam parses the {day} path value; a bad value writes the error response.
func (s *Server) dayParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 1 {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid day number"))
		return 0, false
	}
	return day, true
}

func (s *Server) arriveHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	stamp, ok := s.session.ConfirmArrival(id)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Activity not found or already completed"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Arrival confirmed", map[string]interface{}{
		"stamp": stamp,
		"plan":  s.session.ActivePlan(),
	}))
}

func (s *Server) removeActivityHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.session.RemoveActivity(id) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Activity not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Activity removed", s.session.ActivePlan()))
}

func (s *Server) favoriteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}
	act := active.ActivityByID(id)
	if act == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Activity not found"))
		return
	}
	added := s.session.ToggleFavorite(*act)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]bool{"favorite": added}))
}

func (s *Server) favoritesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(s.session.Favorites()))
}

func (s *Server) stampsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(s.session.Stamps()))
}

func (s *Server) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(s.session.DrainNotifications()))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"drafts":    len(s.session.Drafts()),
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
