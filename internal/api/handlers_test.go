package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gezgin-ai/gezgin/internal/genai"
	"github.com/gezgin-ai/gezgin/internal/models"
	"github.com/gezgin-ai/gezgin/internal/store"
)

// stubGenAI replays scripted responses and counts calls.
type stubGenAI struct {
	responses []genai.Response
	calls     int
	lastReq   genai.GenerateRequest
}

func (g *stubGenAI) Generate(_ context.Context, req genai.GenerateRequest) genai.Response {
	g.lastReq = req
	resp := genai.Response{Text: "ok"}
	if g.calls < len(g.responses) {
		resp = g.responses[g.calls]
	}
	g.calls++
	return resp
}

func newTestServer(t *testing.T, ga genai.ClientInterface) (*Server, *httptest.Server) {
	t.Helper()
	if ga == nil {
		ga = &stubGenAI{}
	}
	srv := NewServer(store.NewInMemoryStore(), ga)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func onboardRequest() map[string]interface{} {
	return map[string]interface{}{
		"city":             "Chicago, IL",
		"dates":            "Oct 12 - Oct 14",
		"duration":         2,
		"tempo":            "moderate",
		"budget":           "standard",
		"transport":        "public",
		"explorationStyle": "balanced",
	}
}

func TestSignupAndLogin(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/auth/signup", map[string]string{
		"name": "Demo", "email": "Demo@GezginAI.com", "password": "hunter2",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// email comparison is case-insensitive
	resp = postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email": "demo@gezginai.com", "password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email": "demo@gezginai.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestOnboardingCreatesActivePlan(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/onboarding", onboardRequest())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("onboarding status = %d", resp.StatusCode)
	}
	out := decodeResponse(t, resp)
	if out.Status != string(models.APIStatusOK) {
		t.Fatalf("unexpected status: %+v", out)
	}

	active, err := http.Get(ts.URL + "/plans/active")
	if err != nil {
		t.Fatal(err)
	}
	if active.StatusCode != http.StatusOK {
		t.Errorf("active plan status = %d", active.StatusCode)
	}
	active.Body.Close()
}

func TestOnboardingRejectsInvalidProfile(t *testing.T) {
	_, ts := newTestServer(t, nil)

	bad := onboardRequest()
	bad["duration"] = 0
	resp := postJSON(t, ts.URL+"/onboarding", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDaySummariesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	resp, err := http.Get(ts.URL + "/plans/active/days")
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, resp)
	result, ok := out.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %+v", out.Result)
	}
	days, ok := result["days"].([]interface{})
	if !ok || len(days) != 2 {
		t.Errorf("expected 2 day summaries, got %v", result["days"])
	}
}

func TestChatAppliesPlanUpdate(t *testing.T) {
	ga := &stubGenAI{responses: []genai.Response{{
		Text: "Swapped it!\n```json\n{\"activities\": [{\"id\": \"x1\", \"day\": 1, \"activity\": \"River Cruise\", \"status\": \"pending\", \"type\": \"nature\"}]}\n```",
	}}}
	srv, ts := newTestServer(t, ga)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	resp := postJSON(t, ts.URL+"/chat", map[string]string{"prompt": "replace everything with a cruise"})
	out := decodeResponse(t, resp)
	if out.Status != string(models.APIStatusOK) {
		t.Fatalf("chat failed: %+v", out)
	}
	result := out.Result.(map[string]interface{})
	if result["updated"] != true {
		t.Error("expected updated=true")
	}

	active := srv.session.ActivePlan()
	if len(active.Activities) != 1 || active.Activities[0].Activity != "River Cruise" {
		t.Errorf("itinerary not replaced: %+v", active.Activities)
	}
	if ga.lastReq.Mode != genai.ModePlanner {
		t.Errorf("chat must use planner mode, got %s", ga.lastReq.Mode)
	}
}

func TestChatMalformedPayloadLeavesPlanAlone(t *testing.T) {
	ga := &stubGenAI{responses: []genai.Response{{
		Text: "Here!\n```json\n{\"activities\": [}\n```",
	}}}
	srv, ts := newTestServer(t, ga)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()
	before := len(srv.session.ActivePlan().Activities)

	resp := postJSON(t, ts.URL+"/chat", map[string]string{"prompt": "break it"})
	out := decodeResponse(t, resp)
	result := out.Result.(map[string]interface{})
	if result["updated"] == true {
		t.Error("malformed payload reported as update")
	}
	if got := len(srv.session.ActivePlan().Activities); got != before {
		t.Errorf("plan mutated: %d -> %d activities", before, got)
	}
}

func TestChatFallbackIsDegraded(t *testing.T) {
	ga := &stubGenAI{responses: []genai.Response{{Text: genai.FallbackText, Fallback: true}}}
	srv, ts := newTestServer(t, ga)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()
	before := len(srv.session.ActivePlan().Activities)

	resp := postJSON(t, ts.URL+"/chat", map[string]string{"prompt": "hello"})
	out := decodeResponse(t, resp)
	if out.Status != string(models.APIStatusDegraded) {
		t.Errorf("expected degraded status, got %s", out.Status)
	}
	if got := len(srv.session.ActivePlan().Activities); got != before {
		t.Error("fallback response mutated the plan")
	}
}

func TestChatWithoutActivePlan(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/chat", map[string]string{"prompt": "hi"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBriefingCachesPerPlanAndDay(t *testing.T) {
	briefing := `{"headline": "Loop It Up", "summary": "Busy day.", "weather": {"temp": "10C", "condition": "Windy", "emoji": "x", "advice": "layers"}, "dressCode": {"title": "Casual", "description": "layers"}, "packing": ["shoes"], "transport": "Take the L", "culturalTip": "tip well", "safetyTip": "mind the gap"}`
	ga := &stubGenAI{responses: []genai.Response{{Text: briefing}, {Text: briefing}}}
	_, ts := newTestServer(t, ga)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/briefing/1")
		if err != nil {
			t.Fatal(err)
		}
		out := decodeResponse(t, resp)
		if out.Status != string(models.APIStatusOK) {
			t.Fatalf("briefing call %d: %+v", i, out)
		}
	}
	// onboarding does not call the generator; both briefing hits share one call
	if ga.calls != 1 {
		t.Errorf("expected 1 generator call thanks to the cache, got %d", ga.calls)
	}
}

func TestBriefingFallsBackOnGarbage(t *testing.T) {
	ga := &stubGenAI{responses: []genai.Response{{Text: "not json"}}}
	_, ts := newTestServer(t, ga)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	resp, err := http.Get(ts.URL + "/briefing/1")
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, resp)
	if out.Status != string(models.APIStatusDegraded) {
		t.Errorf("expected degraded briefing, got %s", out.Status)
	}
	result := out.Result.(map[string]interface{})
	if result["headline"] == "" {
		t.Error("fallback briefing must still render")
	}
}

func TestLiveCheckQueuesNotifications(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	active := srv.session.ActivePlan()
	day1 := active.Activities[0]
	ga := srv.ga.(*stubGenAI)
	ga.responses = []genai.Response{{
		Text: `[{"id": "` + day1.ID + `", "status": "closed", "message": "Closed for a private event"}, {"id": "ghost", "status": "alert", "message": "nope"}]`,
	}}

	resp, err := http.Get(ts.URL + "/livecheck/1")
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, resp)
	result := out.Result.(map[string]interface{})
	statuses := result["statuses"].(map[string]interface{})
	if len(statuses) != 1 {
		t.Errorf("ghost id must be dropped, got %v", statuses)
	}
	if result["alerts"].(float64) != 1 {
		t.Errorf("expected 1 alert, got %v", result["alerts"])
	}

	notifs := srv.session.DrainNotifications()
	if len(notifs) != 1 || notifs[0].Message != "Closed for a private event" {
		t.Errorf("notification not queued: %+v", notifs)
	}
}

func TestArriveAndStamps(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()
	target := srv.session.ActivePlan().Activities[0]

	resp := postJSON(t, ts.URL+"/activities/"+target.ID+"/arrive", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("arrive status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	stamps, err := http.Get(ts.URL + "/stamps")
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, stamps)
	if got := out.Result.([]interface{}); len(got) != 1 {
		t.Errorf("expected 1 stamp, got %d", len(got))
	}

	// a second arrival at the same stop is rejected
	resp = postJSON(t, ts.URL+"/activities/"+target.ID+"/arrive", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat arrive status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPlanLifecycleOverHTTP(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()

	drafts := srv.session.Drafts()
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	older := drafts[1]

	// activate the older draft
	resp := postJSON(t, ts.URL+"/plans/"+older.ID+"/activate", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if srv.session.ActivePlan().ID != older.ID {
		t.Error("activation did not switch the active plan")
	}

	// delete the active draft; the remaining one takes over
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/plans/"+older.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}
	delResp.Body.Close()
	if active := srv.session.ActivePlan(); active == nil || active.ID == older.ID {
		t.Errorf("active plan did not fall back: %+v", active)
	}
}

func TestFavoriteToggleOverHTTP(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	postJSON(t, ts.URL+"/onboarding", onboardRequest()).Body.Close()
	target := srv.session.ActivePlan().Activities[0]

	resp := postJSON(t, ts.URL+"/activities/"+target.ID+"/favorite", nil)
	out := decodeResponse(t, resp)
	result := out.Result.(map[string]interface{})
	if result["favorite"] != true {
		t.Error("first toggle must favorite")
	}

	resp = postJSON(t, ts.URL+"/activities/"+target.ID+"/favorite", nil)
	out = decodeResponse(t, resp)
	result = out.Result.(map[string]interface{})
	if result["favorite"] != false {
		t.Error("second toggle must unfavorite")
	}
}
