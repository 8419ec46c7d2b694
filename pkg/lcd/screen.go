package lcd

import (
	"context"
	"os"
	"time"

	"github.com/fogleman/gg"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

const (
	screenSize    = 128
	lineHeight    = screenSize / NumLines
	refreshPeriod = 500 * time.Millisecond
)

// Render draws the display onto an RGB565 framebuffer until ctx is done, then blanks it.
func (l *LCD) Render(ctx context.Context, device string) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		logger.Warnf(ctx, "Failed to open screen %s, ignoring: %v", device, err)
		return
	}
	defer f.Close()

	ticker := time.NewTicker(refreshPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			var buf [screenSize * screenSize * 2]byte
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(buf[:])
			return
		case <-ticker.C:
		}

		buf := toRGB565(l.Draw())
		if _, err := f.Seek(0, 0); err != nil {
			logger.Errorf(ctx, "Screen failure: %v", err)
			return
		}
		for i := 0; i < screenSize; i++ {
			if _, err := f.Write(buf[i*256 : i*256+256]); err != nil {
				logger.Errorf(ctx, "Screen failure: %v", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}

// Draw renders the current lines.
func (l *LCD) Draw() *gg.Context {
	dc := gg.NewContext(screenSize, screenSize)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGBA(1, 0.9, 0, 1)
	for i, text := range l.Lines() {
		dc.DrawString(text, 2, float64((i+1)*lineHeight-3))
	}
	return dc
}

func toRGB565(dc *gg.Context) []byte {
	buf := make([]byte, screenSize*screenSize*2)
	img := dc.Image()
	for y := 0; y < screenSize; y++ {
		for x := 0; x < screenSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			// The panel is mounted rotated a quarter turn.
			buf[(screenSize-1-y)*2+x*screenSize*2+1] = (rb << 3) | (gb >> 3)
			buf[(screenSize-1-y)*2+x*screenSize*2] = bb | (gb << 5)
		}
	}
	return buf
}
