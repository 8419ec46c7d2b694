package sound

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// InitSound starts the player goroutine. Send a wav path to play it, cutting off
// whatever was playing. Close the channel to stop the player.
func InitSound() chan string {
	soundsToPlay := make(chan string)
	go func() {
		log := logger.Logger().Named("sound")
		defer func() {
			recover()
			for s := range soundsToPlay {
				log.Warnf("Unable to play %s", s)
			}
		}()
		sampleRate := beep.SampleRate(44100)
		err := speaker.Init(sampleRate, sampleRate.N(time.Second/5))
		if err != nil {
			log.Errorf("Failed to open speaker: %v", err)
			for s := range soundsToPlay {
				log.Warnf("Unable to play %s", s)
			}
			return
		}
		var ctrl *beep.Ctrl
		var s beep.StreamSeekCloser
		for soundToPlay := range soundsToPlay {
			if ctrl != nil {
				speaker.Lock()
				ctrl.Paused = true
				ctrl.Streamer = nil
				speaker.Unlock()
				ctrl = nil
			}
			if s != nil {
				s.Close()
				s = nil
			}

			f, err := os.Open(soundToPlay)
			if err != nil {
				log.Errorf("Failed to open sound: %v", err)
				continue
			}
			s, _, err = wav.Decode(f)
			if err != nil {
				log.Errorf("Failed to decode sound: %v", err)
				f.Close()
				s = nil
				continue
			}
			ctrl = &beep.Ctrl{Streamer: s}
			speaker.Play(ctrl)
		}
	}()
	return soundsToPlay
}
