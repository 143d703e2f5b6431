// Package lower implements the Lowerer of spec.md §4.5: statements and
// expressions compile into il.Block over an environment mapping local
// variable names to monotonically allocated slots. Grounded on
// vm/compiler_scope.go's beginScope/endScope/addLocal/resolveLocal shape,
// adapted from a byte-offset jump target world to a named-label one.
package lower

// scopeEntry records what Define shadowed, so EndScope can restore it —
// the same shadow-stack idiom as compiler_scope.go's Local array plus
// scopeDepth bookkeeping, but keyed by name instead of array position
// since slots here are never reused.
type scopeEntry struct {
	name     string
	prevSlot int
	hadPrev  bool
}

// Env tracks the slot assigned to each local variable name currently in
// scope. Slots are allocated monotonically (spec.md §4.5 "Slots are
// allocated monotonically; each For or nested comprehension allocates a
// fresh slot") and never reused, even after EndScope.
type Env struct {
	vars   map[string]int
	next   int
	shadow []scopeEntry

	// uninit tracks slots bound by DefineUninit that have not yet seen a
	// Store, so LowerExpr's EVariable case can flag a load of them as
	// diag.VariablePossiblyUninitialised instead of silently reading junk.
	uninit map[int]bool
}

// NewEnv creates an empty environment with slot allocation starting at 0.
func NewEnv() *Env {
	return &Env{vars: make(map[string]int), uninit: make(map[int]bool)}
}

// NewEnvAt creates an environment whose first free slot is 'first',
// reserving slots below it (used for constraint blocks, which pin the
// value under test to config.THISSlot before any other slot is handed
// out).
func NewEnvAt(first int) *Env {
	return &Env{vars: make(map[string]int), next: first, uninit: make(map[int]bool)}
}

// Bind assigns name to slot directly, used once to wire up a pre-reserved
// slot (THIS_SLOT, a function's own parameters) before any ordinary Define
// call runs. When slot is at or past the monotonic counter, the counter
// advances to slot+1 so a later Define never hands the same slot out again.
func (e *Env) Bind(name string, slot int) {
	e.vars[name] = slot
	if slot >= e.next {
		e.next = slot + 1
	}
}

// BeginScope returns a mark to later pass to EndScope.
func (e *Env) BeginScope() int {
	return len(e.shadow)
}

// EndScope undoes every Define since the matching BeginScope, restoring
// whatever each name was bound to before (or removing it if it was
// previously unbound). The slot counter itself never rewinds.
func (e *Env) EndScope(mark int) {
	for len(e.shadow) > mark {
		top := e.shadow[len(e.shadow)-1]
		e.shadow = e.shadow[:len(e.shadow)-1]
		if top.hadPrev {
			e.vars[top.name] = top.prevSlot
		} else {
			delete(e.vars, top.name)
		}
	}
}

// Define allocates a fresh slot for name, shadowing any existing binding
// until the enclosing scope ends.
func (e *Env) Define(name string) int {
	prev, had := e.vars[name]
	e.shadow = append(e.shadow, scopeEntry{name: name, prevSlot: prev, hadPrev: had})
	slot := e.next
	e.next++
	e.vars[name] = slot
	return slot
}

// Lookup returns the slot bound to name, if any.
func (e *Env) Lookup(name string) (int, bool) {
	s, ok := e.vars[name]
	return s, ok
}

// DefineUninit allocates a fresh slot for name the same way Define does,
// but marks it uninitialised until the first MarkInitialised call against
// that slot — used for a `var x T` declaration with no initialiser.
func (e *Env) DefineUninit(name string) int {
	slot := e.Define(name)
	e.uninit[slot] = true
	return slot
}

// MarkInitialised clears the uninitialised flag on slot, called at every
// site that stores into it (assignment, destructuring, loop/comprehension
// binders).
func (e *Env) MarkInitialised(slot int) {
	delete(e.uninit, slot)
}

// IsUninitialised reports whether slot was declared via DefineUninit and
// has not yet been stored into.
func (e *Env) IsUninitialised(slot int) bool {
	return e.uninit[slot]
}

// NumSlots returns one past the highest slot handed out so far.
func (e *Env) NumSlots() int {
	return e.next
}
