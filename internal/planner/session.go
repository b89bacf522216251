package planner

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gezgin-ai/gezgin/internal/genai"
	"github.com/gezgin-ai/gezgin/internal/models"
	"github.com/gezgin-ai/gezgin/internal/store"
	"github.com/gezgin-ai/gezgin/internal/util"
)

// Slot names an operation family that must not run concurrently with itself.
type Slot string

const (
	SlotPlanGeneration Slot = "plan_generation"
	SlotChat           Slot = "chat"
)

// BriefingSlot scopes briefing fetches per day.
func BriefingSlot(day int) Slot { return Slot(fmt.Sprintf("briefing_%d", day)) }

// LiveCheckSlot scopes live-check audits per day.
func LiveCheckSlot(day int) Slot { return Slot(fmt.Sprintf("livecheck_%d", day)) }

// DefaultFlushDelay batches rapid successive mutations into one store write.
const DefaultFlushDelay = 1 * time.Second

// stampIcons maps an activity type to the stamp artwork collected on arrival.
var stampIcons = map[models.ActivityType]string{
	models.ActivityTypeFood:      "🍕",
	models.ActivityTypeCulture:   "🏛",
	models.ActivityTypeNature:    "🌿",
	models.ActivityTypeNightlife: "🎷",
	models.ActivityTypeShopping:  "🛍",
	models.ActivityTypeSport:     "🏟",
}

// SessionState is the authoritative in-process trip state: the draft store,
// the preference profile, the traveler's collectibles, and the in-flight
// bookkeeping for generator calls. All access is serialized by a mutex; the
// per-slot busy flags and request tokens exist to tame overlapping generator
// round trips, not the lock.
type SessionState struct {
	mu sync.Mutex

	drafts        *DraftStore
	profile       *models.PreferenceProfile
	favorites     []models.FavoritePlace
	stamps        []models.DigitalStamp
	notifications []models.Notification

	busy   map[Slot]bool
	tokens map[Slot]uint64

	st         store.Store
	dirty      map[string]bool // plan ids pending flush
	dirtyMeta  bool            // active id or profile pending flush
	flushDelay time.Duration
	flushTimer *time.Timer
}

// NewSessionState builds a session backed by the given store. Pass a nil
// store for an ephemeral session.
func NewSessionState(st store.Store) *SessionState {
	return &SessionState{
		drafts:     NewDraftStore(),
		busy:       make(map[Slot]bool),
		tokens:     make(map[Slot]uint64),
		st:         st,
		dirty:      make(map[string]bool),
		flushDelay: DefaultFlushDelay,
	}
}

// SetFlushDelay overrides the write-back debounce, mainly for tests.
func (s *SessionState) SetFlushDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushDelay = d
}

// Hydrate loads persisted drafts, the active pointer and the profile from the
// store into the session.
func (s *SessionState) Hydrate() error {
	if s.st == nil {
		return nil
	}
	plans, err := s.st.ListTripPlans()
	if err != nil {
		return fmt.Errorf("failed to load trip plans: %w", err)
	}
	activeID, err := s.st.GetActivePlanID()
	if err != nil {
		return fmt.Errorf("failed to load active plan id: %w", err)
	}
	profile, err := s.st.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// ListTripPlans is newest-first; Add prepends, so feed it oldest-first.
	for i := len(plans) - 1; i >= 0; i-- {
		s.drafts.Add(plans[i])
	}
	if activeID != "" {
		s.drafts.SetActive(activeID)
	}
	s.profile = profile
	slog.Info("SessionState.Hydrate: session restored",
		"drafts", s.drafts.Len(), "activePlanID", s.drafts.ActiveID(), "hasProfile", profile != nil)
	return nil
}

// TryBegin claims a slot. A slot already in flight yields ok=false and the
// caller must no-op instead of stacking a duplicate request. On success the
// returned token identifies this request; pass it to Commit.
func (s *SessionState) TryBegin(slot Slot) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[slot] {
		slog.Debug("SessionState.TryBegin: slot busy, suppressing re-entry", "slot", slot)
		return 0, false
	}
	s.busy[slot] = true
	s.tokens[slot]++
	return s.tokens[slot], true
}

// Invalidate bumps a slot's token so any in-flight request for it becomes
// stale. Used when the subject of the request changes underneath it, e.g. the
// active plan is switched while a briefing is loading.
func (s *SessionState) Invalidate(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[slot]++
}

// Commit releases a slot and reports whether the request is still current.
// A stale token means the result must be discarded: the session moved on
// while the request was in flight.
func (s *SessionState) Commit(slot Slot, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[slot] = false
	if token != s.tokens[slot] {
		slog.Debug("SessionState.Commit: discarding stale response",
			"slot", slot, "token", token, "latest", s.tokens[slot])
		return false
	}
	return true
}

// CompleteOnboarding validates the profile, generates the initial draft plan
// and makes it active. The previous drafts survive; the new plan fronts the
// list.
func (s *SessionState) CompleteOnboarding(profile models.PreferenceProfile) (models.TripPlan, error) {
	plan, err := GeneratePlan(profile)
	if err != nil {
		return models.TripPlan{}, fmt.Errorf("failed to generate plan: %w", err)
	}

	s.mu.Lock()
	s.profile = &profile
	s.drafts.Add(plan)
	s.dirty[plan.ID] = true
	s.dirtyMeta = true
	s.scheduleFlushLocked()
	s.mu.Unlock()

	slog.Info("SessionState.CompleteOnboarding: plan created",
		"planID", plan.ID, "city", profile.City, "days", profile.Duration)
	return plan, nil
}

// Profile returns a copy of the stored preference profile, or nil.
func (s *SessionState) Profile() *models.PreferenceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// ActivePlan returns a copy of the active draft, or nil.
func (s *SessionState) ActivePlan() *models.TripPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Active()
}

// Drafts lists the drafts newest-first.
func (s *SessionState) Drafts() []models.TripPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Plans()
}

// Draft returns a copy of one draft by id, or nil.
func (s *SessionState) Draft(id string) *models.TripPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Get(id)
}

// LoadDraft makes the given draft active. Switching plans invalidates any
// in-flight chat response so a late plan update cannot land on the new plan.
func (s *SessionState) LoadDraft(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drafts.SetActive(id) {
		return false
	}
	s.tokens[SlotChat]++
	s.dirtyMeta = true
	s.scheduleFlushLocked()
	return true
}

// DeleteDraft removes a draft. When the active draft is deleted the first
// remaining draft takes over; deleting the last one clears the active plan.
// The new active plan (or nil) is returned.
func (s *SessionState) DeleteDraft(id string) (*models.TripPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, deleted := s.drafts.Delete(id)
	if !deleted {
		return s.drafts.Active(), false
	}
	s.dirtyMeta = true
	s.scheduleFlushLocked()
	if s.st != nil {
		if err := s.st.DeleteTripPlan(id); err != nil {
			slog.Error("SessionState.DeleteDraft: failed to delete persisted plan", "planID", id, "error", err)
		}
	}
	slog.Info("SessionState.DeleteDraft: draft removed", "planID", id, "newActive", s.drafts.ActiveID())
	return s.drafts.Active(), true
}

// ApplyChatResponse runs a planner response through the merge protocol
// against the active plan. It returns the text to display and whether the
// itinerary changed. Fallback responses never reach here; the caller checks
// the fallback flag first.
func (s *SessionState) ApplyChatResponse(text string) (string, bool) {
	outcome := ParseResponse(text)
	if !outcome.Accepted {
		return outcome.CleanText, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.drafts.Active()
	if active == nil {
		slog.Warn("SessionState.ApplyChatResponse: update arrived with no active plan")
		return outcome.CleanText, false
	}
	ApplyUpdate(active, outcome)
	s.drafts.Update(*active)
	s.dirty[active.ID] = true
	s.scheduleFlushLocked()
	return outcome.CleanText, true
}

// ConfirmActivePlan marks the active draft as confirmed and ready for the
// live trip surfaces.
func (s *SessionState) ConfirmActivePlan() (*models.TripPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.drafts.Active()
	if active == nil {
		return nil, models.ErrEmptyPlanID
	}
	active.Status = models.TripPlanStatusConfirmed
	if active.CurrentStopID == "" {
		if next := active.NextStop(); next != nil {
			active.CurrentStopID = next.ID
		}
	}
	s.drafts.Update(*active)
	s.dirty[active.ID] = true
	s.scheduleFlushLocked()
	slog.Info("SessionState.ConfirmActivePlan: plan confirmed", "planID", active.ID)
	return active, nil
}

// RemoveActivity drops one stop from the active plan.
func (s *SessionState) RemoveActivity(activityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.drafts.Active()
	if active == nil {
		return false
	}
	kept := active.Activities[:0:0]
	for _, a := range active.Activities {
		if a.ID != activityID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(active.Activities) {
		return false
	}
	active.Activities = kept
	s.drafts.Update(*active)
	s.dirty[active.ID] = true
	s.scheduleFlushLocked()
	return true
}

// ConfirmArrival marks a stop completed, advances the current stop to the
// next pending one, and mints a digital stamp for the traveler's passport.
func (s *SessionState) ConfirmArrival(activityID string) (*models.DigitalStamp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.drafts.Active()
	if active == nil {
		return nil, false
	}
	act := active.ActivityByID(activityID)
	if act == nil || act.Status == models.ActivityStatusCompleted {
		return nil, false
	}
	act.Status = models.ActivityStatusCompleted

	active.CurrentStopID = ""
	if next := active.NextStop(); next != nil {
		active.CurrentStopID = next.ID
	}

	stamp := models.DigitalStamp{
		ID:        util.GenerateStampID(),
		PlaceName: act.Activity,
		City:      active.Destination,
		Date:      time.Now(),
		Icon:      stampIcon(act.Type),
	}
	s.stamps = append(s.stamps, stamp)

	s.drafts.Update(*active)
	s.dirty[active.ID] = true
	s.scheduleFlushLocked()
	slog.Info("SessionState.ConfirmArrival: stop completed",
		"planID", active.ID, "activityID", activityID, "nextStop", active.CurrentStopID)
	return &stamp, true
}

func stampIcon(t models.ActivityType) string {
	if icon, ok := stampIcons[t]; ok {
		return icon
	}
	return "📍"
}

// Stamps returns the collected stamps, oldest first.
func (s *SessionState) Stamps() []models.DigitalStamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DigitalStamp, len(s.stamps))
	copy(out, s.stamps)
	return out
}

// ToggleFavorite bookmarks an activity, or removes the bookmark when it is
// already saved. It reports whether the place is a favorite afterwards.
func (s *SessionState) ToggleFavorite(act models.Activity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.favorites {
		if f.ID == act.ID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return false
		}
	}
	s.favorites = append(s.favorites, models.FavoritePlace{
		ID:       act.ID,
		Name:     act.Activity,
		Location: act.Location,
		Tags:     []string{string(act.Type)},
		AddedAt:  time.Now(),
	})
	return true
}

// Favorites lists the bookmarked places in insertion order.
func (s *SessionState) Favorites() []models.FavoritePlace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FavoritePlace, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// PushNotification queues an attention message, e.g. a live-check alert.
func (s *SessionState) PushNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// DrainNotifications returns and clears the queued notifications.
func (s *SessionState) DrainNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

// ChatRequest assembles a generator request for the planner conversation
// using the current session context.
func (s *SessionState) ChatRequest(history []models.Message, prompt, image string) genai.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := genai.GenerateRequest{
		History: history,
		Prompt:  prompt,
		Image:   image,
		Mode:    genai.ModePlanner,
	}
	if active := s.drafts.Active(); active != nil {
		req.Plan = *active
	}
	if s.profile != nil {
		p := *s.profile
		req.Preferences = &p
	}
	return req
}

// scheduleFlushLocked arms the debounced write-back. Callers hold s.mu.
func (s *SessionState) scheduleFlushLocked() {
	if s.st == nil {
		return
	}
	if s.flushTimer != nil {
		s.flushTimer.Stop()
	}
	s.flushTimer = time.AfterFunc(s.flushDelay, func() {
		if err := s.Flush(); err != nil {
			slog.Error("SessionState: debounced flush failed", "error", err)
		}
	})
}

// Flush writes all pending state to the store immediately. Safe to call at
// shutdown; a nil store makes it a no-op.
func (s *SessionState) Flush() error {
	s.mu.Lock()
	if s.st == nil {
		s.mu.Unlock()
		return nil
	}
	if s.flushTimer != nil {
		s.flushTimer.Stop()
		s.flushTimer = nil
	}
	var plans []models.TripPlan
	for id := range s.dirty {
		if p := s.drafts.Get(id); p != nil {
			plans = append(plans, *p)
		}
	}
	s.dirty = make(map[string]bool)
	meta := s.dirtyMeta
	s.dirtyMeta = false
	activeID := s.drafts.ActiveID()
	var profile *models.PreferenceProfile
	if s.profile != nil {
		p := *s.profile
		profile = &p
	}
	st := s.st
	s.mu.Unlock()

	for _, p := range plans {
		if err := st.SaveTripPlan(p); err != nil {
			return fmt.Errorf("failed to persist plan %s: %w", p.ID, err)
		}
	}
	if meta {
		if err := st.SetActivePlanID(activeID); err != nil {
			return fmt.Errorf("failed to persist active plan id: %w", err)
		}
		if profile != nil {
			if err := st.SaveProfile(*profile); err != nil {
				return fmt.Errorf("failed to persist profile: %w", err)
			}
		}
	}
	slog.Debug("SessionState.Flush: state persisted", "plans", len(plans), "meta", meta)
	return nil
}
