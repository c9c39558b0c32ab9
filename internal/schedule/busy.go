package schedule

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// BusyIndex aggregates every source of unavailability for the day: confirmed
// appointment spans, persisted package step spans, professional blocks, and
// business-wide blocks (which apply to all professionals). Intervals are kept
// as-is; overlap between sources is harmless because membership testing is
// intersect-any. The lunch closure is not part of the index - it has no
// professional key and is applied by the slot functions directly.
type BusyIndex struct {
	byProfessional map[string][]Interval
	general        []Interval
}

func NewBusyIndex() *BusyIndex {
	return &BusyIndex{byProfessional: map[string][]Interval{}}
}

func (b *BusyIndex) Add(professionalID string, iv Interval) {
	if professionalID == "" {
		b.AddGeneral(iv)
		return
	}
	b.byProfessional[professionalID] = append(b.byProfessional[professionalID], iv)
}

func (b *BusyIndex) AddGeneral(iv Interval) {
	b.general = append(b.general, iv)
}

// ForProfessional returns every interval during which the professional cannot
// be booked, business-wide blocks included.
func (b *BusyIndex) ForProfessional(professionalID string) []Interval {
	own := b.byProfessional[professionalID]
	if len(b.general) == 0 {
		return own
	}
	out := make([]Interval, 0, len(own)+len(b.general))
	out = append(out, own...)
	out = append(out, b.general...)
	return out
}
