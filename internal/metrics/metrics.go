// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	CreateTotal     = expvar.NewInt("lorekeeper_create_total")
	UpdateTotal     = expvar.NewInt("lorekeeper_update_total")
	DeleteTotal     = expvar.NewInt("lorekeeper_delete_total")
	ListTotal       = expvar.NewInt("lorekeeper_list_total")
	ParseFailures   = expvar.NewInt("lorekeeper_parse_failures_total")
	ReverseRefScans = expvar.NewInt("lorekeeper_reverse_ref_scans_total")
	LockStalls      = expvar.NewInt("lorekeeper_lock_stalls_total")
	CycleRejections = expvar.NewInt("lorekeeper_cycle_rejections_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
