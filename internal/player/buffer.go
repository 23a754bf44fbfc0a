package player

// DisplayBuffer is the two-slot image buffer behind segment transitions. The
// next image is attached to the inactive slot while the previous one stays
// visible, then the swap is committed, so a transition never shows a blank
// frame. The abstraction is rendering-target agnostic.
type DisplayBuffer struct {
	slots  [2]string
	active int
	staged bool
}

// Current returns the visible slot's media reference.
func (b *DisplayBuffer) Current() string {
	return b.slots[b.active]
}

// ActiveSlot returns the index of the visible slot.
func (b *DisplayBuffer) ActiveSlot() int {
	return b.active
}

// Attach loads the next media reference into the hidden slot without changing
// what is displayed.
func (b *DisplayBuffer) Attach(ref string) {
	b.slots[1-b.active] = ref
	b.staged = true
}

// Commit swaps the staged slot into view. A no-op when nothing is staged.
func (b *DisplayBuffer) Commit() {
	if !b.staged {
		return
	}
	b.active = 1 - b.active
	b.staged = false
}

// Show attaches and commits ref unless it is already displayed. It reports
// whether a swap happened.
func (b *DisplayBuffer) Show(ref string) bool {
	if ref == b.Current() {
		return false
	}
	b.Attach(ref)
	b.Commit()
	return true
}

// Reset clears both slots and shows ref in the first slot.
func (b *DisplayBuffer) Reset(ref string) {
	b.slots = [2]string{ref, ""}
	b.active = 0
	b.staged = false
}
