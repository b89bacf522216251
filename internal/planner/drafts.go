package planner

import (
	"github.com/gezgin-ai/gezgin/internal/models"
)

// DraftStore holds the working set of trip drafts, newest first, with one
// active draft. It is not safe for concurrent use; SessionState owns it and
// serializes access.
type DraftStore struct {
	drafts   []models.TripPlan
	activeID string
}

// NewDraftStore returns an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{}
}

// Add prepends a plan so the newest draft lists first, and makes it active.
func (d *DraftStore) Add(plan models.TripPlan) {
	d.drafts = append([]models.TripPlan{plan.Clone()}, d.drafts...)
	d.activeID = plan.ID
}

// Plans returns a copy of the drafts, newest first.
func (d *DraftStore) Plans() []models.TripPlan {
	out := make([]models.TripPlan, 0, len(d.drafts))
	for _, p := range d.drafts {
		out = append(out, p.Clone())
	}
	return out
}

// Len reports how many drafts are held.
func (d *DraftStore) Len() int { return len(d.drafts) }

// Get returns a copy of the draft with the given id, or nil.
func (d *DraftStore) Get(id string) *models.TripPlan {
	for i := range d.drafts {
		if d.drafts[i].ID == id {
			p := d.drafts[i].Clone()
			return &p
		}
	}
	return nil
}

// Active returns a copy of the active draft, or nil when none is active.
func (d *DraftStore) Active() *models.TripPlan {
	if d.activeID == "" {
		return nil
	}
	return d.Get(d.activeID)
}

// ActiveID returns the active draft's id, or empty.
func (d *DraftStore) ActiveID() string { return d.activeID }

// SetActive switches the active draft. It reports whether the id was found;
// the active pointer is untouched on a miss.
func (d *DraftStore) SetActive(id string) bool {
	for i := range d.drafts {
		if d.drafts[i].ID == id {
			d.activeID = id
			return true
		}
	}
	return false
}

// Update writes a plan back into the store by id. When no draft carries the
// plan's id, the update lands on the currently-active draft instead, keeping
// that draft's identity, so an edit never spawns a duplicate. It reports
// whether anything was written.
func (d *DraftStore) Update(plan models.TripPlan) bool {
	for i := range d.drafts {
		if d.drafts[i].ID == plan.ID {
			d.drafts[i] = plan.Clone()
			return true
		}
	}
	if d.activeID == "" {
		return false
	}
	for i := range d.drafts {
		if d.drafts[i].ID == d.activeID {
			updated := plan.Clone()
			updated.ID = d.activeID
			d.drafts[i] = updated
			return true
		}
	}
	return false
}

// Delete removes a draft. Deleting the active draft promotes the first
// remaining draft to active; deleting the last draft leaves no active draft.
// It returns the new active id and whether a draft was removed.
func (d *DraftStore) Delete(id string) (string, bool) {
	idx := -1
	for i := range d.drafts {
		if d.drafts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d.activeID, false
	}

	d.drafts = append(d.drafts[:idx], d.drafts[idx+1:]...)
	if d.activeID == id {
		if len(d.drafts) > 0 {
			d.activeID = d.drafts[0].ID
		} else {
			d.activeID = ""
		}
	}
	return d.activeID, true
}
