// animation steps through a knight's path a frame at a time, as a browser would draw it.
package animation

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// Command is a playback control, keyed the same as the page's keyboard controls.
type Command string

const (
	TogglePause Command = " "
	Faster      Command = "+"
	Slower      Command = "-"
)

// Frame is the playback position at one point in time.
// Index is the last path position drawn; positions 0..Index are visible.
type Frame struct {
	Index  int
	Length int
	Speed  int
	Paused bool
	Done   bool
}

// Player tracks the playback position over a path of a fixed length.
// A Player is not safe for concurrent use; Run owns it once started.
type Player struct {
	length   int
	index    int
	speed    int
	maxSpeed int
	paused   bool
	done     bool
}

// NewPlayer returns a player at the start of a path with the given number of cells.
// Speed is clamped to [1, maxSpeed].
func NewPlayer(length, speed, maxSpeed int) *Player {
	maxSpeed = max(maxSpeed, 1)
	return &Player{
		length:   length,
		speed:    min(max(speed, 1), maxSpeed),
		maxSpeed: maxSpeed,
		// Nothing to play for paths of length zero or one.
		done: length <= 1,
	}
}

// Frame returns the current frame.
func (p *Player) Frame() Frame {
	return Frame{
		Index:  p.index,
		Length: p.length,
		Speed:  p.speed,
		Paused: p.paused,
		Done:   p.done,
	}
}

// Apply executes a playback command. Unknown commands are ignored.
func (p *Player) Apply(cmd Command) {
	switch cmd {
	case TogglePause:
		p.paused = !p.paused
	case Faster:
		p.speed = min(p.speed+1, p.maxSpeed)
	case Slower:
		p.speed = max(p.speed-1, 1)
	}
}

// Advance moves the index forward by the current speed, unless paused or done.
// Once the end is passed the index is clamped to the last position and the player is done.
func (p *Player) Advance() Frame {
	if p.paused || p.done {
		return p.Frame()
	}

	p.index += p.speed
	if p.index >= p.length-1 {
		p.index = max(p.length-1, 0)
		p.done = true
	}
	return p.Frame()
}

// Run plays the path, emitting a frame per interval tick and after every command.
// The output chan closes after the final frame is emitted or when ctx is cancelled.
func (p *Player) Run(
	ctx context.Context,
	commands <-chan Command,
	interval time.Duration,
) <-chan Frame {
	frames := make(chan Frame)

	go func() {
		defer close(frames)

		emit := func(frame Frame) bool {
			select {
			case frames <- frame:
				framesEmitted.Inc()
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(p.Frame()) {
			return
		}

		ticker := channerics.NewTicker(ctx.Done(), interval)
		for !p.done {
			select {
			case <-ctx.Done():
				return
			case cmd, ok := <-commands:
				if !ok {
					commands = nil
					break
				}
				p.Apply(cmd)
				if !emit(p.Frame()) {
					return
				}
			case <-ticker:
				if p.paused {
					break
				}
				if !emit(p.Advance()) {
					return
				}
			}
		}
	}()

	return frames
}
