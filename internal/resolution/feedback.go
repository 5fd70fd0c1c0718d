package resolution

import (
	"fmt"
	"strings"
	"sync"
)

// FeedbackCategory is the presentation-neutral hover hint for a target.
type FeedbackCategory string

const (
	FeedbackDirectValid   FeedbackCategory = "direct-valid"
	FeedbackIndirectValid FeedbackCategory = "indirect-valid"
	// FeedbackNeutral means "nothing to offer"; it is never an error state.
	FeedbackNeutral FeedbackCategory = "neutral"
)

// Feedback describes how a hovered target should be decorated.
type Feedback struct {
	TargetID string           `json:"targetId"`
	Category FeedbackCategory `json:"category"`
	Tooltip  string           `json:"tooltip"`
}

// GetConnectionFeedback maps a verdict to hover feedback.
func GetConnectionFeedback(res ConnectionResolution) Feedback {
	fb := Feedback{TargetID: res.TargetID, Category: FeedbackNeutral}
	switch {
	case len(res.DirectRelationships) == 1:
		fb.Category = FeedbackDirectValid
		fb.Tooltip = fmt.Sprintf("Create %q relationship", res.DirectRelationships[0].Label)
	case len(res.DirectRelationships) > 1:
		fb.Category = FeedbackDirectValid
		fb.Tooltip = fmt.Sprintf("%d relationship types available", len(res.DirectRelationships))
	case len(res.IndirectPaths) == 1:
		fb.Category = FeedbackIndirectValid
		fb.Tooltip = "Connect via " + joinTypes(res.IndirectPaths[0])
	case len(res.IndirectPaths) > 1:
		fb.Category = FeedbackIndirectValid
		fb.Tooltip = fmt.Sprintf("%d indirect paths available (best via %s)", len(res.IndirectPaths), joinTypes(res.IndirectPaths[0]))
	}
	return fb
}

func joinTypes(p IndirectPath) string {
	names := make([]string, len(p.IntermediateTypes))
	for i, t := range p.IntermediateTypes {
		names[i] = string(t)
	}
	return strings.Join(names, " → ")
}

// FeedbackBoard tracks the feedback currently shown per target.
type FeedbackBoard struct {
	mu     sync.Mutex
	active map[string]Feedback
}

// NewFeedbackBoard returns an empty board.
func NewFeedbackBoard() *FeedbackBoard {
	return &FeedbackBoard{active: make(map[string]Feedback)}
}

// Show records fb as the active feedback for its target.
func (b *FeedbackBoard) Show(fb Feedback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active[fb.TargetID] = fb
}

// Active returns the feedback shown on targetID, if any.
func (b *FeedbackBoard) Active(targetID string) (Feedback, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fb, ok := b.active[targetID]
	return fb, ok
}

// Clear removes the feedback on targetID. Clearing a target without feedback
// is a no-op; the result reports whether anything was removed.
func (b *FeedbackBoard) Clear(targetID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.active[targetID]
	delete(b.active, targetID)
	return ok
}

// ClearAll removes every active feedback.
func (b *FeedbackBoard) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.active)
}

// Len returns the number of targets with active feedback.
func (b *FeedbackBoard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}
