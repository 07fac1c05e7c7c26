package tracker

import (
	"github.com/voxelhive/warden/models"
)

// forecastWindow is how far ahead, in seconds, a mover's position is
// extrapolated for predictive visibility loading.
const forecastWindow float32 = 1.0

// motionPredictor estimates a player's horizontal velocity from consecutive
// position updates and extrapolates a forecast position one window ahead.
// It is a pure function of the observed updates: deterministic, no clock.
type motionPredictor struct {
	lastPos  models.Position
	lastTick uint64

	velX float32
	velZ float32

	forecast models.Position
}

func newMotionPredictor(pos models.Position, tick uint64) *motionPredictor {
	return &motionPredictor{
		lastPos:  pos,
		lastTick: tick,
		forecast: pos,
	}
}

// observe folds one position update into the velocity estimate. The first
// update after registration has no tick delta to divide by, so the velocity
// stays zero until two distinct ticks have been seen.
func (p *motionPredictor) observe(pos models.Position, tick uint64) {
	if tick > p.lastTick {
		dt := float32(tick-p.lastTick) / models.TicksPerSecond
		p.velX = (pos.X - p.lastPos.X) / dt
		p.velZ = (pos.Z - p.lastPos.Z) / dt
	}

	p.lastPos = pos
	p.lastTick = tick
	p.forecast = models.Position{
		X: pos.X + p.velX*forecastWindow,
		Y: pos.Y,
		Z: pos.Z + p.velZ*forecastWindow,
	}
}

// forecastPosition returns the extrapolated position one window ahead. The y
// component is held at the last observed value.
func (p *motionPredictor) forecastPosition() models.Position {
	return p.forecast
}

// velocity returns the current horizontal velocity estimate in units per
// second.
func (p *motionPredictor) velocity() (float32, float32) {
	return p.velX, p.velZ
}
