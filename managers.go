package tortuga

// cleanupStack collects destructors for objects created during a multi step
// construction. On failure run executes them in reverse creation order; on
// success release drops them so the objects outlive the constructor.
//
//	var undo cleanupStack
//	defer undo.run()
//	... create, undo.push(destroy) ...
//	undo.release()
type cleanupStack struct {
	fns []func()
}

func (c *cleanupStack) push(fn func()) {
	c.fns = append(c.fns, fn)
}

// run pops and executes every pending destructor.
func (c *cleanupStack) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}

func (c *cleanupStack) release() {
	c.fns = nil
}

func (c *cleanupStack) len() int {
	return len(c.fns)
}
