package device

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/tempograph/microloop/spsc"
	"github.com/tempograph/microloop/visual"
)

// Display is the narrow contract for the OLED framebuffer collaborator:
// push a bitmap id, the device renders it however it can.
type Display interface {
	Show(id visual.BitmapID)
}

var bitmapNames = map[visual.BitmapID]string{
	visual.Default:                  "DEFAULT",
	visual.FreezeActive:             "FREEZE ACTIVE",
	visual.ChokeActive:              "CHOKE ACTIVE",
	visual.Quant32Bitmap:            "QUANT 1/32",
	visual.Quant16Bitmap:            "QUANT 1/16",
	visual.Quant8Bitmap:             "QUANT 1/8",
	visual.Quant4Bitmap:             "QUANT 1/4",
	visual.ChokeLengthFree:          "CHOKE LENGTH: FREE",
	visual.ChokeLengthQuant:         "CHOKE LENGTH: QUANT",
	visual.ChokeOnsetFree:           "CHOKE ONSET: FREE",
	visual.ChokeOnsetQuant:          "CHOKE ONSET: QUANT",
	visual.FreezeLengthFree:         "FREEZE LENGTH: FREE",
	visual.FreezeLengthQuant:        "FREEZE LENGTH: QUANT",
	visual.FreezeOnsetFree:          "FREEZE ONSET: FREE",
	visual.FreezeOnsetQuant:         "FREEZE ONSET: QUANT",
	visual.StutterIdleWithLoop:      "STUTTER: LOOP READY",
	visual.StutterCapturing:         "STUTTER: CAPTURING",
	visual.StutterPlaying:           "STUTTER: PLAYING",
	visual.StutterOnsetFree:         "STUTTER ONSET: FREE",
	visual.StutterOnsetQuant:        "STUTTER ONSET: QUANT",
	visual.StutterLengthFree:        "STUTTER LENGTH: FREE",
	visual.StutterLengthQuant:       "STUTTER LENGTH: QUANT",
	visual.StutterCaptureStartFree:  "STUTTER CAPTURE START: FREE",
	visual.StutterCaptureStartQuant: "STUTTER CAPTURE START: QUANT",
	visual.StutterCaptureEndFree:    "STUTTER CAPTURE END: FREE",
	visual.StutterCaptureEndQuant:   "STUTTER CAPTURE END: QUANT",
}

func bitmapName(id visual.BitmapID) string {
	if name, ok := bitmapNames[id]; ok {
		return name
	}
	return fmt.Sprintf("BITMAP(%d)", id)
}

// TermDisplay stands in for the OLED panel: it drains a small queue of
// bitmap ids pushed by the control loop and prints the most recent one's
// name in cyan. The queue absorbs bursts of Show calls from the control
// loop without blocking it; only the latest matters, so PollAndRender
// drains to the newest and drops anything older.
type TermDisplay struct {
	queue *spsc.Ring[visual.BitmapID]
	last  visual.BitmapID
	shown bool
}

// NewTermDisplay returns a TermDisplay with room for 15 pending bitmap
// updates (a 16-slot ring).
func NewTermDisplay() *TermDisplay {
	return &TermDisplay{queue: spsc.New[visual.BitmapID](16)}
}

// Show enqueues a bitmap id for the next render pass. Safe to call from
// the control context; never blocks.
func (d *TermDisplay) Show(id visual.BitmapID) {
	d.queue.Push(id)
}

// PollAndRender drains the pending queue to its newest entry and, if it
// differs from what was last printed, prints it.
func (d *TermDisplay) PollAndRender() {
	changed := false
	var latest visual.BitmapID
	for {
		id, ok := d.queue.Pop()
		if !ok {
			break
		}
		latest, changed = id, true
	}
	if !changed || (d.shown && latest == d.last) {
		return
	}
	d.last, d.shown = latest, true
	color.Cyan("[display] %s", bitmapName(latest))
}
