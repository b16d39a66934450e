package vantage

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// debugWarnKeptRatio is the kept/considered ratio above which a filtered
// render cull is reported as ineffective.
const debugWarnKeptRatio = 0.9

// debugMinConsidered keeps the ratio warning quiet for tiny scenes.
const debugMinConsidered = 256

// SetLogger replaces the scene logger. The default discards everything.
func (s *Scene) SetLogger(l zerolog.Logger) {
	s.log = l
}

// Logger returns the scene logger.
func (s *Scene) Logger() zerolog.Logger {
	return s.log
}

// SetDebugMode enables per-frame cull stats at debug level. If no logger was
// set, a console logger on stderr is installed.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	if enabled && s.log.GetLevel() == zerolog.Disabled {
		s.log = NewConsoleLogger().Level(zerolog.DebugLevel)
	}
}

// DebugMode reports whether debug logging is on.
func (s *Scene) DebugMode() bool { return s.debug }

// NewConsoleLogger returns a human-readable logger on stderr tagged
// component=vantage.
func NewConsoleLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().
		Timestamp().
		Str("component", "vantage").
		Logger()
}

// CullStats returns the render and hit-test stats of the last cull for cam.
func (s *Scene) CullStats(cam *Camera) (render, hits CullStats, ok bool) {
	v := s.view(cam)
	if v == nil {
		return CullStats{}, CullStats{}, false
	}
	return v.culler.RenderStats(), v.culler.HitStats(), true
}

// debugLogFrame writes one event per visible camera with its cull stats.
func (s *Scene) debugLogFrame() {
	if s.log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, v := range s.views {
		cam := v.cam
		if !cam.Visible {
			continue
		}
		rs := v.culler.RenderStats()
		hs := v.culler.HitStats()
		s.log.Debug().
			Uint64("frame", s.frame).
			Str("camera", cam.Name).
			Uint32("id", uint32(cam.id)).
			Int("considered", rs.Considered).
			Int("kept", rs.Kept).
			Int("unsized", rs.Unsized).
			Stringer("outcome", rs.Outcome).
			Int("hitConsidered", hs.Considered).
			Int("hitKept", hs.Kept).
			Msg("cull")

		if rs.Outcome == CullDegenerate {
			s.log.Warn().
				Uint64("frame", s.frame).
				Str("camera", cam.Name).
				Msg("camera transform not invertible, culling skipped")
		}
		if rs.Outcome == CullFiltered && rs.Considered >= debugMinConsidered &&
			float64(rs.Kept) > debugWarnKeptRatio*float64(rs.Considered) {
			s.log.Warn().
				Str("camera", cam.Name).
				Int("kept", rs.Kept).
				Int("considered", rs.Considered).
				Msg("most candidates survive the cull")
		}
	}
}
