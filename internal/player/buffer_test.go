package player

import "testing"

func TestDisplayBufferAttachCommit(t *testing.T) {
	var b DisplayBuffer
	b.Reset("a.png")

	if b.Current() != "a.png" || b.ActiveSlot() != 0 {
		t.Fatalf("after Reset: current=%q slot=%d", b.Current(), b.ActiveSlot())
	}

	// Attach stages the hidden slot; the display is untouched until Commit.
	b.Attach("b.png")
	if b.Current() != "a.png" {
		t.Errorf("Attach changed the display to %q", b.Current())
	}
	b.Commit()
	if b.Current() != "b.png" || b.ActiveSlot() != 1 {
		t.Errorf("after Commit: current=%q slot=%d, want b.png slot 1", b.Current(), b.ActiveSlot())
	}

	// Commit without a staged attach is a no-op.
	b.Commit()
	if b.Current() != "b.png" || b.ActiveSlot() != 1 {
		t.Errorf("bare Commit moved the buffer: current=%q slot=%d", b.Current(), b.ActiveSlot())
	}
}

func TestDisplayBufferShowAlternatesSlots(t *testing.T) {
	var b DisplayBuffer
	b.Reset("a.png")

	refs := []string{"b.png", "c.png", "d.png"}
	for i, ref := range refs {
		if !b.Show(ref) {
			t.Fatalf("Show(%q) reported no swap", ref)
		}
		if b.Current() != ref {
			t.Errorf("current = %q, want %q", b.Current(), ref)
		}
		if want := (i + 1) % 2; b.ActiveSlot() != want {
			t.Errorf("slot after Show(%q) = %d, want %d", ref, b.ActiveSlot(), want)
		}
	}

	// Showing what is already visible does nothing.
	if b.Show("d.png") {
		t.Error("Show of the displayed ref reported a swap")
	}
}

func TestDisplayBufferReset(t *testing.T) {
	var b DisplayBuffer
	b.Reset("a.png")
	b.Show("b.png")
	b.Attach("c.png")

	b.Reset("z.png")
	if b.Current() != "z.png" || b.ActiveSlot() != 0 {
		t.Errorf("after Reset: current=%q slot=%d, want z.png slot 0", b.Current(), b.ActiveSlot())
	}
	// The stale staged attach from before Reset must not survive.
	b.Commit()
	if b.Current() != "z.png" {
		t.Errorf("Commit after Reset showed %q", b.Current())
	}
}
