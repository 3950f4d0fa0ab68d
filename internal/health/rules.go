package health

import "file-cache/internal/metrics"

// RuleResult is the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// missRateMinGets keeps MissRateRule quiet on tiny samples.
const missRateMinGets = 10

// LoadFailureRule fires when the snapshot existed but could not be used.
func LoadFailureRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.CacheLoadFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Cache snapshot could not be loaded; the store started empty",
			Recommendation: "Inspect the snapshot file; the next commit overwrites it",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// CommitFailureRule fires when a snapshot write failed.
func CommitFailureRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.CacheCommitFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Cache snapshot commits are failing",
			Recommendation: "Check permissions and free space in the cache directory",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// MissRateRule fires when most reads miss.
func MissRateRule(snapshot map[string]int64) RuleResult {
	gets := snapshot[string(metrics.CacheGetsTotal)]
	misses := snapshot[string(metrics.CacheMissesTotal)]

	if gets >= missRateMinGets && misses*2 > gets {
		return RuleResult{
			Triggered:      true,
			Signal:         "Most cache reads miss",
			Recommendation: "Review the default TTL or the keys being read",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
