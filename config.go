package main

import "time"

// Defaults for the reference run: a 1024 point rod, unit wave speed and
// spacing, 4000 leapfrog steps and a snapshot every tenth step. The viewer
// constants control the ebiten front end.
const (
	defaultGridPoints     = 1024
	defaultMaxIteration   = 4000
	defaultSnapshotEvery  = 10
	defaultWaveSpeed      = 1.0
	defaultSpaceStep      = 1.0
	defaultOutputDir      = "data"
	defaultLogEvery       = 500
	snapshotNameFormat    = "%05d.dat"
	maxGridPoints         = 1 << 28
	windowWidth           = 1024
	windowHeight          = 360
	windowScale           = 1
	defaultTPS            = 60.0
	defaultSimMultiplier  = 10
	simMultiplierStep     = 5
	minSimMultiplier      = 1
	maxSimMultiplier      = 400
	plotWidth             = 100
	plotHeight            = 16
	sampleCaptureInterval = 2 * time.Second
	audioPlayerLatency    = 60 * time.Millisecond
)
