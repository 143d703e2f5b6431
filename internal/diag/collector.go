package diag

// Collector implements spec.md §7's recovery policy: at most one error is
// kept per declaration (the Resolver's granularity) or per statement (the
// Lowerer's granularity), after which that unit is abandoned and
// processing continues with the next one. Grounded on the "continue on
// errors to collect diagnostics from all stages" policy stated for the
// teacher's own pipeline stages, even though the pipeline package itself
// has no home here.
type Collector struct {
	errs []*Error

	// unitFailed tracks whether the current declaration/statement already
	// recorded an error, so a second failure inside the same unit is
	// dropped rather than piled on.
	unitFailed bool
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// StartUnit resets the "one error per unit" gate. Call it once per
// declaration (Resolver) or per statement (Lowerer) before processing it.
func (c *Collector) StartUnit() {
	c.unitFailed = false
}

// Report records err unless the current unit has already failed once.
// InternalFailure is always recorded, even within an already-failed unit,
// per spec.md §7 ("callers must never swallow it").
func (c *Collector) Report(err *Error) {
	if c.unitFailed && err.Kind != InternalFailure {
		return
	}
	c.errs = append(c.errs, err)
	c.unitFailed = true
}

// Failed reports whether the current unit has already recorded an error.
func (c *Collector) Failed() bool {
	return c.unitFailed
}

// Errors returns every error recorded so far, in report order.
func (c *Collector) Errors() []*Error {
	return c.errs
}

// HasErrors reports whether any error has been recorded across all units.
func (c *Collector) HasErrors() bool {
	return len(c.errs) > 0
}
