package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gezgin-ai/gezgin/internal/genai"
	"github.com/gezgin-ai/gezgin/internal/models"
	"github.com/gezgin-ai/gezgin/internal/planner"
)

// chatRequest is the payload for POST /chat and POST /guide.
type chatRequest struct {
	History    []models.Message     `json:"history,omitempty"`
	Prompt     string               `json:"prompt"`
	Image      string               `json:"image,omitempty"` // data URI
	Location   *models.TripLocation `json:"location,omitempty"`
	ActivityID string               `json:"activityId,omitempty"`
}

// chatResponse is what the conversation endpoints return.
type chatResponse struct {
	Reply   string           `json:"reply"`
	Updated bool             `json:"updated"`
	Plan    *models.TripPlan `json:"plan,omitempty"`
}

// chatHandler runs one planner conversation turn. A well-formed plan payload
// in the response replaces the active itinerary; a response that arrives
// after the active plan changed is discarded.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Prompt == "" && req.Image == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: prompt"))
		return
	}
	if s.session.ActivePlan() == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan; complete onboarding first"))
		return
	}

	token, ok := s.session.TryBegin(planner.SlotChat)
	if !ok {
		writeJSONResponse(w, http.StatusTooManyRequests, models.Error("A planner request is already in flight"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenerateTimeout)
	defer cancel()
	resp := s.ga.Generate(ctx, s.session.ChatRequest(req.History, req.Prompt, req.Image))
	current := s.session.Commit(planner.SlotChat, token)

	if resp.Fallback {
		writeJSONResponse(w, http.StatusOK, models.Degraded(resp.Text, chatResponse{Reply: resp.Text}))
		return
	}
	if !current {
		slog.Info("Server.chatHandler: discarding response for superseded request")
		text := planner.ParseResponse(resp.Text).CleanText
		writeJSONResponse(w, http.StatusOK, models.Success(chatResponse{Reply: text}))
		return
	}

	text, updated := s.session.ApplyChatResponse(resp.Text)
	out := chatResponse{Reply: text, Updated: updated}
	if updated {
		out.Plan = s.session.ActivePlan()
	}
	writeJSONResponse(w, http.StatusOK, models.Success(out))
}

// guideHandler runs one tour-guide turn at the traveler's current stop. Guide
// responses never touch the itinerary.
func (s *Server) guideHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.guideHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}

	genReq := genai.GenerateRequest{
		History:     req.History,
		Prompt:      req.Prompt,
		Image:       req.Image,
		Plan:        *active,
		Mode:        genai.ModeGuide,
		Preferences: s.session.Profile(),
		Location:    req.Location,
	}
	if req.ActivityID != "" {
		genReq.CurrentActivity = active.ActivityByID(req.ActivityID)
	} else if active.CurrentStopID != "" {
		genReq.CurrentActivity = active.ActivityByID(active.CurrentStopID)
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenerateTimeout)
	defer cancel()
	resp := s.ga.Generate(ctx, genReq)
	if resp.Fallback {
		writeJSONResponse(w, http.StatusOK, models.Degraded(resp.Text, chatResponse{Reply: resp.Text}))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(chatResponse{Reply: resp.Text}))
}

// briefingHandler returns the daily intelligence briefing for one day of the
// active plan, cached per plan and day.
func (s *Server) briefingHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}

	cacheKey := fmt.Sprintf("briefing:%s:%d", active.ID, day)
	if cached, found := s.advisory.Get(cacheKey); found {
		writeJSONResponse(w, http.StatusOK, models.Success(cached))
		return
	}

	slot := planner.BriefingSlot(day)
	token, ok := s.session.TryBegin(slot)
	if !ok {
		writeJSONResponse(w, http.StatusTooManyRequests, models.Error("Briefing is already loading"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenerateTimeout)
	defer cancel()
	resp := s.ga.Generate(ctx, genai.GenerateRequest{
		Plan: *active,
		Mode: genai.ModeBriefing,
		Day:  day,
	})
	current := s.session.Commit(slot, token)

	briefing, parsed := planner.ParseBriefing(resp.Text)
	if resp.Fallback || !parsed {
		slog.Warn("Server.briefingHandler: serving fallback briefing", "planID", active.ID, "day", day)
		writeJSONResponse(w, http.StatusOK, models.Degraded("Briefing unavailable, showing defaults", briefing))
		return
	}
	if current {
		s.advisory.Set(cacheKey, briefing, briefingCacheTTL)
	}
	writeJSONResponse(w, http.StatusOK, models.Success(briefing))
}

// liveCheckHandler audits the open/closed status of one day's stops. Statuses
// that need attention are queued as notifications.
func (s *Server) liveCheckHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	active := s.session.ActivePlan()
	if active == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active plan"))
		return
	}

	cacheKey := fmt.Sprintf("livecheck:%s:%d", active.ID, day)
	if cached, found := s.advisory.Get(cacheKey); found {
		writeJSONResponse(w, http.StatusOK, models.Success(cached))
		return
	}

	slot := planner.LiveCheckSlot(day)
	token, ok := s.session.TryBegin(slot)
	if !ok {
		writeJSONResponse(w, http.StatusTooManyRequests, models.Error("Live check is already running"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenerateTimeout)
	defer cancel()
	resp := s.ga.Generate(ctx, genai.GenerateRequest{
		Plan: *active,
		Mode: genai.ModeLiveCheck,
		Day:  day,
	})
	current := s.session.Commit(slot, token)

	dayActivities := planner.ActivitiesForDay(*active, day)
	statuses := planner.ParseLiveStatuses(resp.Text, dayActivities)
	if resp.Fallback || len(statuses) == 0 {
		writeJSONResponse(w, http.StatusOK, models.Degraded("Live status unavailable", map[string]models.LiveStatus{}))
		return
	}

	s.queueAttentionNotifications(dayActivities, statuses)

	if current {
		s.advisory.Set(cacheKey, statuses, liveCheckCacheTTL)
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"statuses": statuses,
		"alerts":   planner.CountAlerts(statuses),
	}))
}

// queueAttentionNotifications turns closed/alert statuses into notifications.
func (s *Server) queueAttentionNotifications(dayActivities []models.Activity, statuses map[string]models.LiveStatus) {
	for _, a := range dayActivities {
		status, found := statuses[a.ID]
		if !found || !status.Status.NeedsAttention() {
			continue
		}
		s.session.PushNotification(models.Notification{
			Title:   "Heads up: " + a.Activity,
			Message: status.Message,
		})
	}
}

// refreshLiveStatuses re-audits the current day of a confirmed active plan and
// queues notifications for stops that need attention. Driven by the
// background scheduler.
func (s *Server) refreshLiveStatuses() {
	active := s.session.ActivePlan()
	if active == nil || active.Status != models.TripPlanStatusConfirmed {
		return
	}
	day := 1
	if active.CurrentStopID != "" {
		if act := active.ActivityByID(active.CurrentStopID); act != nil {
			day = act.EffectiveDay()
		}
	}

	slot := planner.LiveCheckSlot(day)
	token, ok := s.session.TryBegin(slot)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultGenerateTimeout)
	defer cancel()
	resp := s.ga.Generate(ctx, genai.GenerateRequest{
		Plan: *active,
		Mode: genai.ModeLiveCheck,
		Day:  day,
	})
	current := s.session.Commit(slot, token)
	if resp.Fallback || !current {
		return
	}

	dayActivities := planner.ActivitiesForDay(*active, day)
	statuses := planner.ParseLiveStatuses(resp.Text, dayActivities)
	if len(statuses) == 0 {
		return
	}
	s.queueAttentionNotifications(dayActivities, statuses)
	s.advisory.Set(fmt.Sprintf("livecheck:%s:%d", active.ID, day), statuses, liveCheckCacheTTL)
	slog.Debug("Server.refreshLiveStatuses: live statuses refreshed", "planID", active.ID, "day", day, "statuses", len(statuses))
}
