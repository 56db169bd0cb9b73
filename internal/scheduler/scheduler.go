// Package scheduler implements the dot-keyed event queue that the frame
// driver drains between CPU instructions.
package scheduler

import "sort"

// Kind identifies what an Event does when it fires.
type Kind int

const (
	// VBlankEnd corresponds to the pre-render line: scroll reload and the
	// first visible scanline are drawn here.
	VBlankEnd Kind = iota
	// ScanlineEnd advances scroll Y and draws the next visible scanline.
	ScanlineEnd
	// Sprite0Hit marks PPUSTATUS bit 6 at the dot of the colliding pixel.
	Sprite0Hit
	// CartridgeTick drives a mapper's scanline IRQ counter (MMC3).
	CartridgeTick
)

// Event is a single scheduled action, keyed by its PPU-dot offset from
// the start of the frame. Cartridge ticks, which the mapper schedules
// in StartOfFrame, use the same dot units as the PPU's own events.
type Event struct {
	Dot  uint64
	Kind Kind
	X, Y uint16
}

// Scheduler is a small ordered multiset of Events, at most a few hundred
// entries per frame. A slice re-sorted on drain is simpler than a heap at
// this scale and preserves insertion order among equal dots.
type Scheduler struct {
	events []Event
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add inserts an event. Order among events with equal Dot is the order
// they were added.
func (s *Scheduler) Add(e Event) {
	s.events = append(s.events, e)
}

// DrainReady removes and returns, in non-decreasing Dot order, every
// event whose Dot is less than or equal to maxDot. Ties preserve
// insertion order.
func (s *Scheduler) DrainReady(maxDot uint64) []Event {
	if len(s.events) == 0 {
		return nil
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Dot < s.events[j].Dot
	})

	n := 0
	for n < len(s.events) && s.events[n].Dot <= maxDot {
		n++
	}
	if n == 0 {
		return nil
	}

	ready := make([]Event, n)
	copy(ready, s.events[:n])
	s.events = s.events[n:]
	return ready
}

// Clear discards every pending event, called at end of frame.
func (s *Scheduler) Clear() {
	s.events = s.events[:0]
}

// Len reports how many events are still pending.
func (s *Scheduler) Len() int {
	return len(s.events)
}
