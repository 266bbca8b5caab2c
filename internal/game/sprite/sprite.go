// Package sprite models named animations and playback progress. Frames are
// opaque indices; turning them into pixels or glyphs is the host's job.
package sprite

import (
	"fmt"
	"time"
)

// Animation names the engine plays.
const (
	Idle    = "Idle"
	Walk    = "Walk"
	Attack  = "Attack"
	Spell   = "Spell"
	UseItem = "Item"
	Defend  = "Defend"
	Dodge   = "Dodge"
	Hit     = "Hit"
	Die     = "Die"
	Dead    = "Dead"
	Project = "Projectile"
)

// Animation is one named sequence of frames.
type Animation struct {
	Name       string `yaml:"name"`
	Frames     int    `yaml:"frames"`
	IntervalMS int    `yaml:"interval_ms"`
	Loop       bool   `yaml:"loop"`
}

// Validate reports whether the animation is playable.
func (a Animation) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("animation name must not be empty")
	}
	if a.Frames < 1 {
		return fmt.Errorf("animation %q: frames must be >= 1", a.Name)
	}
	if a.IntervalMS < 1 {
		return fmt.Errorf("animation %q: interval_ms must be >= 1", a.Name)
	}
	return nil
}

// oneShot animations are waited on by combat actions and never loop.
var oneShot = map[string]bool{Attack: true, Spell: true, UseItem: true, Hit: true, Dodge: true, Die: true}

// DefaultAnimations is used for any combatant whose content defines none.
func DefaultAnimations() []Animation {
	return []Animation{
		{Name: Idle, Frames: 2, IntervalMS: 250, Loop: true},
		{Name: Walk, Frames: 4, IntervalMS: 100, Loop: true},
		{Name: Attack, Frames: 4, IntervalMS: 100},
		{Name: Spell, Frames: 4, IntervalMS: 100},
		{Name: UseItem, Frames: 3, IntervalMS: 100},
		{Name: Defend, Frames: 1, IntervalMS: 100, Loop: true},
		{Name: Dodge, Frames: 3, IntervalMS: 100},
		{Name: Hit, Frames: 3, IntervalMS: 100},
		{Name: Die, Frames: 4, IntervalMS: 150},
		{Name: Dead, Frames: 1, IntervalMS: 100, Loop: true},
		{Name: Project, Frames: 2, IntervalMS: 80, Loop: true},
	}
}

// Sprite plays one animation at a time from a fixed set.
// Each combatant owns its own Sprite; Clone before sharing a template.
type Sprite struct {
	animations map[string]Animation
	current    Animation
	frame      int
	elapsed    time.Duration
	complete   bool
}

// New builds a Sprite from anims, filling gaps from DefaultAnimations, and
// starts the Idle animation.
func New(anims []Animation) *Sprite {
	s := &Sprite{animations: make(map[string]Animation)}
	for _, a := range DefaultAnimations() {
		s.animations[a.Name] = a
	}
	for _, a := range anims {
		if a.Validate() != nil {
			continue
		}
		if oneShot[a.Name] {
			a.Loop = false
		}
		s.animations[a.Name] = a
	}
	s.Play(Idle)
	return s
}

// Clone returns an independent copy positioned at the start of its animation.
func (s *Sprite) Clone() *Sprite {
	out := &Sprite{animations: make(map[string]Animation, len(s.animations))}
	for k, v := range s.animations {
		out.animations[k] = v
	}
	out.Play(s.current.Name)
	return out
}

// Play switches to the named animation and restarts it.
// Unknown names fall back to Idle.
func (s *Sprite) Play(name string) {
	a, ok := s.animations[name]
	if !ok {
		a = s.animations[Idle]
	}
	s.current = a
	s.frame = 0
	s.elapsed = 0
	s.complete = false
}

// PlayIfChanged plays name only when it is not already the current animation.
func (s *Sprite) PlayIfChanged(name string) {
	if s.current.Name != name {
		s.Play(name)
	}
}

// Update advances playback by dt.
func (s *Sprite) Update(dt time.Duration) {
	if s.complete {
		return
	}
	interval := time.Duration(s.current.IntervalMS) * time.Millisecond
	s.elapsed += dt
	for s.elapsed >= interval {
		s.elapsed -= interval
		s.frame++
		if s.frame >= s.current.Frames {
			if s.current.Loop {
				s.frame = 0
				continue
			}
			s.frame = s.current.Frames - 1
			s.complete = true
			return
		}
	}
}

// Current returns the name of the playing animation.
func (s *Sprite) Current() string { return s.current.Name }

// Frame returns the current frame index.
func (s *Sprite) Frame() int { return s.frame }

// IsPlaybackComplete reports whether a non-looping animation has finished.
// Looping animations never complete.
func (s *Sprite) IsPlaybackComplete() bool { return s.complete }
