// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	PeopleStored  = expvar.NewInt("persondir_people_stored_total")
	PeopleDeleted = expvar.NewInt("persondir_people_deleted_total")
	PeopleListed  = expvar.NewInt("persondir_people_listed_total")
	AuthFailures  = expvar.NewInt("persondir_auth_failures_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
