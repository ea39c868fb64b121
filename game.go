package main

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Game drives a simulation from ebiten's update loop and keeps what Draw
// needs between ticks.
type Game struct {
	sim *simulation

	paused            bool
	simStepMultiplier int
	lastSimDuration   time.Duration
	lastStats         fieldStats
	lastSampleLog     time.Time
	finishedLogged    bool

	columns []float64

	audioCtx    *audio.Context
	audioStream *probeAudioStream
	audioPlayer *audio.Player
}

// newGame wraps sim for the viewer, starting the probe audio when enabled.
func newGame(sim *simulation, withAudio bool) *Game {
	g := &Game{
		sim:               sim,
		simStepMultiplier: defaultSimMultiplier,
		lastStats:         sim.stats(),
	}
	if withAudio {
		ctx := audio.NewContext(audioSampleRate)
		g.audioCtx = ctx
		g.audioStream = newProbeAudioStream()
		if player, err := ctx.NewPlayer(g.audioStream); err != nil {
			log.Printf("Audio player creation failed: %v", err)
		} else {
			g.audioPlayer = player
			g.audioPlayer.SetBufferSize(audioPlayerLatency)
			g.audioPlayer.Play()
		}
	}
	return g
}

// Update runs a batch of iterations unless the viewer is paused or the run has
// reached its iteration count.
func (g *Game) Update() error {
	g.handleControls()
	if g.paused {
		return nil
	}
	if g.sim.done() {
		if !g.finishedLogged {
			log.Printf("Run complete after %d iterations", g.sim.iteration)
			g.finishedLogged = true
		}
		return nil
	}

	simStart := time.Now()
	for i := 0; i < g.simStepMultiplier && !g.sim.done(); i++ {
		if err := g.sim.stepOnce(); err != nil {
			return err
		}
		if g.audioStream != nil {
			g.audioStream.SetSample(g.probeValue())
		}
	}
	g.lastSimDuration = time.Since(simStart)
	g.lastStats = g.sim.stats()
	g.logStats()
	return nil
}

// probeValue samples the field at the center of the rod.
func (g *Game) probeValue() float64 {
	curr := g.sim.field.current()
	return curr.get(curr.size() / 2)
}

func (g *Game) logStats() {
	now := time.Now()
	if now.Sub(g.lastSampleLog) < sampleCaptureInterval {
		return
	}
	st := g.lastStats
	log.Printf("Iteration %d: min %.3f max %.3f energy %.4f probe %.3f",
		g.sim.iteration, st.Min, st.Max, st.Energy, g.probeValue())
	g.lastSampleLog = now
}

// close stops audio playback. The simulation is closed by its owner.
func (g *Game) close() {
	if g.audioPlayer != nil {
		_ = g.audioPlayer.Close()
		g.audioPlayer = nil
	}
}
