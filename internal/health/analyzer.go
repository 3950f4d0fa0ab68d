package health

import (
	"github.com/sirupsen/logrus"

	"file-cache/internal/logs"
	"file-cache/internal/metrics"
)

// recentLogEntries bounds how far back the analyzer looks in the log ring.
const recentLogEntries = 100

// Analyzer turns counters and recent log entries into a Report.
type Analyzer struct {
	metrics *metrics.Registry
	ring    *logs.RingHook
	rules   []Rule
}

// NewAnalyzer builds an analyzer with the default rule set. ring may be nil.
func NewAnalyzer(reg *metrics.Registry, ring *logs.RingHook) *Analyzer {
	return &Analyzer{
		metrics: reg,
		ring:    ring,
		rules: []Rule{
			LoadFailureRule,
			CommitFailureRule,
			MissRateRule,
		},
	}
}

// Analyze evaluates every rule and the recent log entries.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		status = escalate(status, result.Severity)
	}

	// Log-based signals
	var fallback, errorsLogged bool
	if a.ring != nil {
		for _, entry := range a.ring.GetLast(recentLogEntries) {
			if entry.Fields["action"] == "logger_fallback" {
				fallback = true
			}
			if entry.Level <= logrus.ErrorLevel {
				errorsLogged = true
			}
		}
	}

	if fallback {
		signals = append(signals, "Log file unavailable; logging to stderr")
		recommendations = append(recommendations, "Check LogFilePath and its directory permissions")
		status = escalate(status, StatusDegraded)
	}

	if errorsLogged {
		signals = append(signals, "Errors recorded in recent logs")
		recommendations = append(recommendations, "Rerun with LogLevel debug and inspect the log")
		status = escalate(status, StatusCritical)
	}

	summary := "Cache is healthy"
	if status != StatusOK {
		summary = "Cache health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
