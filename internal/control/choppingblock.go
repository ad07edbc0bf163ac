package control

// --- Chopping-block mailbox (spec 4.B/4.C, "Chopping-block slot") ---

// Offer installs occupant into the chopping-block slot, blocking while
// another client is already queued for teardown (the single-slot mailbox
// bounds concurrent teardown work to one client at a time). Called by a
// worker that has observed end-of-input and wants to hand itself to the
// Reaper.
func (c *Context) Offer(occupant ChoppingBlockOccupant) {
	c.blockMu.Lock()
	for c.block != nil {
		c.blockCV.Wait()
	}
	c.block = occupant
	c.blockCV.Broadcast()
	c.blockMu.Unlock()
	if c.m != nil {
		c.m.ChoppingBlockBusy.Set(1)
	}
}

// Take blocks until the chopping-block slot is occupied, then returns the
// occupant without clearing the slot. Called only by the Reaper. ok is
// false if StopReaper was called before any occupant arrived, the signal
// the Reaper uses to end its loop at server shutdown.
func (c *Context) Take() (occupant ChoppingBlockOccupant, ok bool) {
	c.blockMu.Lock()
	defer c.blockMu.Unlock()
	for c.block == nil && !c.stopped {
		c.blockCV.Wait()
	}
	if c.block == nil {
		return nil, false
	}
	return c.block, true
}

// StopReaper wakes a Reaper blocked in Take with ok == false. It does not
// affect an occupant already queued; the Reaper retires it normally first.
func (c *Context) StopReaper() {
	c.blockMu.Lock()
	c.stopped = true
	c.blockCV.Broadcast()
	c.blockMu.Unlock()
}

// Clear empties the chopping-block slot and wakes anyone waiting to offer
// the next victim. Called only by the Reaper, after the occupant returned
// by Take has been fully torn down.
func (c *Context) Clear() {
	c.blockMu.Lock()
	c.block = nil
	c.blockCV.Broadcast()
	c.blockMu.Unlock()
	if c.m != nil {
		c.m.ChoppingBlockBusy.Set(0)
	}
}

// BlockOccupied reports whether the chopping-block slot currently holds a
// client, for tests asserting property #3 (at-most-one teardown).
func (c *Context) BlockOccupied() bool {
	c.blockMu.Lock()
	defer c.blockMu.Unlock()
	return c.block != nil
}
