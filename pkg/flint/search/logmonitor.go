package search

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xs2maverick/flint/pkg/flint"
)

// LogMonitor logs solutions and root propagation through logrus.
type LogMonitor struct {
	flint.NopMonitor
	// LogFails additionally logs every contradiction at debug level.
	LogFails bool
}

func (lm *LogMonitor) AfterRootPropagation(m *flint.Measures) {
	log.Debugf("root propagation done after %dms", m.Elapsed().Milliseconds())
}

func (lm *LogMonitor) OnSolution(m *flint.Measures) {
	log.Infof("solution #%d (best %d) - %s", m.Solutions, m.Best, m.OneLine())
}

func (lm *LogMonitor) OnContradiction(m *flint.Measures) {
	if lm.LogFails {
		log.Debugf("fail #%d at node %d", m.Fails, m.Nodes)
	}
}

// StatsLogger periodically logs the search measures from a background
// goroutine. It only reads counters, so it runs unsynchronized alongside the
// single-threaded search; the reported numbers are approximate.
type StatsLogger struct {
	measures *flint.Measures
	interval time.Duration
	done     chan struct{}
}

// NewStatsLogger creates a logger that reports every interval once started.
func NewStatsLogger(m *flint.Measures, interval time.Duration) *StatsLogger {
	return &StatsLogger{measures: m, interval: interval, done: make(chan struct{})}
}

// Start launches the reporting goroutine.
func (s *StatsLogger) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Infof(">> %s", s.measures.OneLine())
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the reporting goroutine.
func (s *StatsLogger) Stop() {
	close(s.done)
}
