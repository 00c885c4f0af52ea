package types

// SectionSlot names one part of the narrative outline.
type SectionSlot string

const (
	SlotHistory         SectionSlot = "history"
	SlotBestTimeToVisit SectionSlot = "best_time_to_visit"
	SlotAttractions     SectionSlot = "attractions"
	SlotLocalFood       SectionSlot = "local_food"
	SlotTransportation  SectionSlot = "transportation"
	SlotFestivals       SectionSlot = "festivals"
)

// SectionSlots lists the slots in the order the prompt outline asks for them.
var SectionSlots = []SectionSlot{
	SlotHistory,
	SlotBestTimeToVisit,
	SlotAttractions,
	SlotLocalFood,
	SlotTransportation,
	SlotFestivals,
}

// EncyclopediaSummary is the reshaped Wikipedia page summary.
type EncyclopediaSummary struct {
	Extract   string `json:"extract"`
	Thumbnail string `json:"thumbnail,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Narrative is what the narrative generator produced for a place.
// Fallback is set when Text is the apology string rather than generated prose.
type Narrative struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// NarrativeSection is one titled block of the narrative.
type NarrativeSection struct {
	Slot  SectionSlot `json:"slot"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Items []string    `json:"items,omitempty"`
}

// NarrativeSections is the parsed form of a narrative.
type NarrativeSections struct {
	Preamble string                           `json:"preamble,omitempty"`
	Sections map[SectionSlot]NarrativeSection `json:"sections"`
	Misses   []ParseHeuristicMiss             `json:"-"`
}

// Section returns the section for slot, or nil when the narrative did not contain it.
func (n NarrativeSections) Section(slot SectionSlot) *NarrativeSection {
	s, ok := n.Sections[slot]
	if !ok {
		return nil
	}
	return &s
}

// DestinationRecord is the display-ready aggregate of the per-place lookups.
type DestinationRecord struct {
	Place           string            `json:"place"`
	Country         string            `json:"country"`
	ImageURL        string            `json:"image_url"`
	Description     string            `json:"description"`
	Preamble        string            `json:"preamble,omitempty"`
	DescriptionIsAI bool              `json:"description_is_ai"`
	WikiURL         string            `json:"wiki_url,omitempty"`
	WikiExtract     string            `json:"wiki_extract,omitempty"`
	WikiThumbnail   string            `json:"wiki_thumbnail,omitempty"`
	Highlights      []string          `json:"highlights,omitempty"`
	BestTimeToVisit *NarrativeSection `json:"best_time_to_visit,omitempty"`
	LocalFood       *NarrativeSection `json:"local_food,omitempty"`
	Transportation  *NarrativeSection `json:"transportation,omitempty"`
	Attractions     *NarrativeSection `json:"attractions,omitempty"`
	History         *NarrativeSection `json:"history,omitempty"`
	Festivals       *NarrativeSection `json:"festivals,omitempty"`
	MissingSections []SectionSlot     `json:"missing_sections,omitempty"`
	Slug            string            `json:"slug"`
}

// OrderedSections returns the present sections in outline order.
func (d *DestinationRecord) OrderedSections() []*NarrativeSection {
	all := []*NarrativeSection{d.History, d.BestTimeToVisit, d.Attractions, d.LocalFood, d.Transportation, d.Festivals}
	out := make([]*NarrativeSection, 0, len(all))
	for _, s := range all {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
