package terminal

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
)

// Audio stands in for a sound device: a terminal can only beep, so deaths
// and escapes beep and everything else is logged. The music stack is kept so
// the status line can show what would be playing.
type Audio struct {
	screen tcell.Screen
	logger *zap.Logger
	music  []string
}

// NewAudio returns an Audio that beeps through screen.
func NewAudio(screen tcell.Screen, logger *zap.Logger) *Audio {
	return &Audio{screen: screen, logger: logger}
}

// PlayCue beeps for death and flee cues.
func (a *Audio) PlayCue(name string) {
	a.logger.Debug("cue", zap.String("name", name))
	if name == combat.CueDeath || name == combat.CueFlee {
		_ = a.screen.Beep()
	}
}

// PushMusic starts name, suspending the current track.
func (a *Audio) PushMusic(name string) {
	a.music = append(a.music, name)
	a.logger.Debug("music pushed", zap.String("track", name), zap.Int("depth", len(a.music)))
}

// PopMusic resumes the previous track. Popping an empty stack is a no-op.
func (a *Audio) PopMusic() {
	if len(a.music) == 0 {
		return
	}
	a.music = a.music[:len(a.music)-1]
	a.logger.Debug("music popped", zap.Int("depth", len(a.music)))
}

// Playing returns the current track, or "".
func (a *Audio) Playing() string {
	if len(a.music) == 0 {
		return ""
	}
	return a.music[len(a.music)-1]
}
