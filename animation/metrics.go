package animation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var framesEmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trapped_animation_frames_total",
	Help: "Frames emitted by all players",
})
