package results

import (
	"slices"
	"sync"

	"github.com/okian/motionlab/internal/domain/model"
)

// Document is an in-memory Display. The service keeps one per client and
// serves its View.
type Document struct {
	mu       sync.RWMutex
	texts    map[string]string
	lists    map[string][]Item
	timeline []model.TimelinePoint
	scrolled string
	renders  int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		texts: make(map[string]string),
		lists: make(map[string][]Item),
	}
}

func (d *Document) SetText(id, text string) {
	d.mu.Lock()
	d.texts[id] = text
	d.mu.Unlock()
}

func (d *Document) ClearList(id string) {
	d.mu.Lock()
	d.lists[id] = nil
	d.mu.Unlock()
}

func (d *Document) AppendItem(id string, item Item) {
	d.mu.Lock()
	d.lists[id] = append(d.lists[id], item)
	d.mu.Unlock()
}

func (d *Document) DrawChart(timeline []model.TimelinePoint) {
	d.mu.Lock()
	d.timeline = slices.Clone(timeline)
	d.renders++
	d.mu.Unlock()
}

func (d *Document) ScrollIntoView(id string) {
	d.mu.Lock()
	d.scrolled = id
	d.mu.Unlock()
}

// Text returns the text set for id.
func (d *Document) Text(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.texts[id]
}

// List returns a copy of the items under id.
func (d *Document) List(id string) []Item {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.lists[id])
}

// Displayed returns the four score strings currently shown. Unset scores are
// empty strings.
func (d *Document) Displayed() model.DisplayedMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return model.DisplayedMetrics{
		Speed:        d.texts[SpeedScore],
		Agility:      d.texts[AgilityScore],
		Coordination: d.texts[CoordinationScore],
		Overall:      d.texts[OverallRating],
	}
}

// View is the serializable snapshot of a document.
type View struct {
	Metrics         model.DisplayedMetrics `json:"metrics"`
	Movements       []Item                 `json:"movements"`
	Techniques      []Item                 `json:"techniques"`
	Recommendations []Item                 `json:"recommendations"`
	KeyMoments      []Item                 `json:"keyMoments"`
	Timeline        []model.TimelinePoint  `json:"timeline"`
	ScrollTarget    string                 `json:"scrollTarget,omitempty"`
	Renders         int                    `json:"renders"`
}

// View snapshots the document.
func (d *Document) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return View{
		Metrics: model.DisplayedMetrics{
			Speed:        d.texts[SpeedScore],
			Agility:      d.texts[AgilityScore],
			Coordination: d.texts[CoordinationScore],
			Overall:      d.texts[OverallRating],
		},
		Movements:       slices.Clone(d.lists[MovementList]),
		Techniques:      slices.Clone(d.lists[TechniqueAnalysis]),
		Recommendations: slices.Clone(d.lists[RecommendationsList]),
		KeyMoments:      slices.Clone(d.lists[KeyMomentsList]),
		Timeline:        slices.Clone(d.timeline),
		ScrollTarget:    d.scrolled,
		Renders:         d.renders,
	}
}

// Timeline returns the timeline last drawn.
func (d *Document) Timeline() []model.TimelinePoint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.timeline)
}
