// Package revert implements the RevertDetector adapter (spec.md §4.1, §6,
// §9): a bounded-radius checksum lookup table mapping a content checksum to
// the most recent Version that produced it.
//
// Revert detection by checksum is named in spec.md §1 as an external
// collaborator ("revert detection by checksum lookup"); the lookup table
// itself — the bounded-radius ring the core actually owns, since DiffState
// must be able to construct one from nothing but a revert_radius integer
// (spec.md §4.1 step 1) — lives here.
package revert

import "container/list"

// Revert describes a detected revert: the Version originally stored under
// the checksum the new revision reproduced (spec.md §4.1, §6).
type Revert struct {
	RevertedTo interface{}
}

// Detector maps a checksum to the most recently stored Version under it,
// forgetting entries once more than radius revisions have been processed
// since they were last touched (spec.md: "a positive integer indicating the
// maximum revision distance that a revert can span"). Version is opaque
// here (interface{}) so this package doesn't need to import the token-
// bearing Version type DiffState uses.
type Detector struct {
	radius int

	versions map[string]interface{}
	refs     map[string]int
	order    *list.List // of string, one entry per revision processed
}

// NewDetector constructs a Detector with the given revert radius. radius
// must be positive; a zero or negative radius disables revert detection
// (every Process call is a miss), which is a valid but useless
// configuration the caller should reject per spec.md §7 ConfigError.
func NewDetector(radius int) *Detector {
	return &Detector{
		radius:   radius,
		versions: make(map[string]interface{}),
		refs:     make(map[string]int),
		order:    list.New(),
	}
}

// Process records version under checksum for this revision and reports
// whether checksum was already present in the bounded history — i.e.
// whether this revision is a revert. The caller is expected to have built
// version eagerly and to mutate it in place once the revert (if any) has
// been resolved, matching spec.md §4.1's "query, then branch" shape.
func (d *Detector) Process(checksum string, version interface{}) *Revert {
	prior, existed := d.versions[checksum]

	d.versions[checksum] = version
	d.order.PushBack(checksum)
	d.refs[checksum]++
	d.expire()

	if existed {
		return &Revert{RevertedTo: prior}
	}
	return nil
}

// expire drops the oldest revisions once more than radius have been
// processed, removing a checksum's stored Version only when no remaining
// revision inside the window still references it.
func (d *Detector) expire() {
	for d.order.Len() > d.radius {
		front := d.order.Front()
		d.order.Remove(front)
		checksum := front.Value.(string)
		d.refs[checksum]--
		if d.refs[checksum] <= 0 {
			delete(d.refs, checksum)
			delete(d.versions, checksum)
		}
	}
}
