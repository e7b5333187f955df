package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestItemsOmitsNilActions(t *testing.T) {
	items := Items(Actions{Quit: func() {}, Copy: func() {}})
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Label != "Copy Translations" || items[1].Label != "Quit" {
		t.Errorf("Unexpected order: %q, %q", items[0].Label, items[1].Label)
	}
}

func TestTooltip(t *testing.T) {
	tests := []struct {
		paused, visible bool
		want            string
	}{
		{false, true, "Overlay"},
		{true, true, "Overlay (paused)"},
		{false, false, "Overlay (hidden)"},
	}
	for _, tt := range tests {
		if got := Tooltip("Overlay", tt.paused, tt.visible); got != tt.want {
			t.Errorf("Tooltip(%v, %v) = %q, want %q", tt.paused, tt.visible, got, tt.want)
		}
	}
}

func TestIcon(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(IconPNG()))
	if err != nil {
		t.Fatalf("IconPNG is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != iconSize {
		t.Errorf("Expected %dpx icon, got %d", iconSize, img.Bounds().Dx())
	}

	ico := IconICO()
	var hdr [3]uint16
	binary.Read(bytes.NewReader(ico), binary.LittleEndian, &hdr)
	if hdr != [3]uint16{0, 1, 1} {
		t.Errorf("Unexpected ICO header %v", hdr)
	}
	if !bytes.Equal(ico[22:30], IconPNG()[:8]) {
		t.Error("Expected PNG payload after the directory entry")
	}
}

func TestSafeCallRecovers(t *testing.T) {
	safeCall("boom", func() { panic("x") })
}
