package capsule

// ReadRef hands the cached allocation itself to fn instead of copying it
// out, and returns fn's result. The pointer is only valid for the duration
// of the call; fn must treat the data as immutable and must not invoke
// side-effect setters (the transaction backing the pointers is still held).
//
// Like Read, a ReadRefN call observes all of its capsules under a single
// transaction.
func ReadRef[T1, R any](c *Container, c1 Capsule[T1], fn func(*T1) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok := tryReadPtr(txn, c1)
		if !ok {
			return
		}
		out = fn(p1)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		p1, _ := tryReadPtr(txn, c1)
		out = fn(p1)
	})
	return out
}

// ReadRef2 is the two-capsule form of ReadRef.
func ReadRef2[T1, T2, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], fn func(*T1, *T2) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		if !ok1 || !ok2 {
			return
		}
		out = fn(p1, p2)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		out = fn(p1, p2)
	})
	return out
}

// ReadRef3 is the three-capsule form of ReadRef.
func ReadRef3[T1, T2, T3, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], fn func(*T1, *T2, *T3) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		if !ok1 || !ok2 || !ok3 {
			return
		}
		out = fn(p1, p2, p3)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		out = fn(p1, p2, p3)
	})
	return out
}

// ReadRef4 is the four-capsule form of ReadRef.
func ReadRef4[T1, T2, T3, T4, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], fn func(*T1, *T2, *T3, *T4) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		p4, ok4 := tryReadPtr(txn, c4)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return
		}
		out = fn(p1, p2, p3, p4)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		EnsureInitialized(txn, c4)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		p4, _ := tryReadPtr(txn, c4)
		out = fn(p1, p2, p3, p4)
	})
	return out
}

// ReadRef5 is the five-capsule form of ReadRef.
func ReadRef5[T1, T2, T3, T4, T5, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], fn func(*T1, *T2, *T3, *T4, *T5) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		p4, ok4 := tryReadPtr(txn, c4)
		p5, ok5 := tryReadPtr(txn, c5)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return
		}
		out = fn(p1, p2, p3, p4, p5)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		EnsureInitialized(txn, c4)
		EnsureInitialized(txn, c5)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		p4, _ := tryReadPtr(txn, c4)
		p5, _ := tryReadPtr(txn, c5)
		out = fn(p1, p2, p3, p4, p5)
	})
	return out
}

// ReadRef6 is the six-capsule form of ReadRef.
func ReadRef6[T1, T2, T3, T4, T5, T6, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6], fn func(*T1, *T2, *T3, *T4, *T5, *T6) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		p4, ok4 := tryReadPtr(txn, c4)
		p5, ok5 := tryReadPtr(txn, c5)
		p6, ok6 := tryReadPtr(txn, c6)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			return
		}
		out = fn(p1, p2, p3, p4, p5, p6)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		EnsureInitialized(txn, c4)
		EnsureInitialized(txn, c5)
		EnsureInitialized(txn, c6)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		p4, _ := tryReadPtr(txn, c4)
		p5, _ := tryReadPtr(txn, c5)
		p6, _ := tryReadPtr(txn, c6)
		out = fn(p1, p2, p3, p4, p5, p6)
	})
	return out
}

// ReadRef7 is the seven-capsule form of ReadRef.
func ReadRef7[T1, T2, T3, T4, T5, T6, T7, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6], c7 Capsule[T7], fn func(*T1, *T2, *T3, *T4, *T5, *T6, *T7) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		p4, ok4 := tryReadPtr(txn, c4)
		p5, ok5 := tryReadPtr(txn, c5)
		p6, ok6 := tryReadPtr(txn, c6)
		p7, ok7 := tryReadPtr(txn, c7)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
			return
		}
		out = fn(p1, p2, p3, p4, p5, p6, p7)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		EnsureInitialized(txn, c4)
		EnsureInitialized(txn, c5)
		EnsureInitialized(txn, c6)
		EnsureInitialized(txn, c7)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		p4, _ := tryReadPtr(txn, c4)
		p5, _ := tryReadPtr(txn, c5)
		p6, _ := tryReadPtr(txn, c6)
		p7, _ := tryReadPtr(txn, c7)
		out = fn(p1, p2, p3, p4, p5, p6, p7)
	})
	return out
}

// ReadRef8 is the eight-capsule form of ReadRef.
func ReadRef8[T1, T2, T3, T4, T5, T6, T7, T8, R any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6], c7 Capsule[T7], c8 Capsule[T8], fn func(*T1, *T2, *T3, *T4, *T5, *T6, *T7, *T8) R) R {
	var out R
	done := false
	c.WithReadTxn(func(txn *ReadTxn) {
		p1, ok1 := tryReadPtr(txn, c1)
		p2, ok2 := tryReadPtr(txn, c2)
		p3, ok3 := tryReadPtr(txn, c3)
		p4, ok4 := tryReadPtr(txn, c4)
		p5, ok5 := tryReadPtr(txn, c5)
		p6, ok6 := tryReadPtr(txn, c6)
		p7, ok7 := tryReadPtr(txn, c7)
		p8, ok8 := tryReadPtr(txn, c8)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 {
			return
		}
		out = fn(p1, p2, p3, p4, p5, p6, p7, p8)
		done = true
	})
	if done {
		containerReadHitCount.Inc()
		return out
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		EnsureInitialized(txn, c1)
		EnsureInitialized(txn, c2)
		EnsureInitialized(txn, c3)
		EnsureInitialized(txn, c4)
		EnsureInitialized(txn, c5)
		EnsureInitialized(txn, c6)
		EnsureInitialized(txn, c7)
		EnsureInitialized(txn, c8)
		p1, _ := tryReadPtr(txn, c1)
		p2, _ := tryReadPtr(txn, c2)
		p3, _ := tryReadPtr(txn, c3)
		p4, _ := tryReadPtr(txn, c4)
		p5, _ := tryReadPtr(txn, c5)
		p6, _ := tryReadPtr(txn, c6)
		p7, _ := tryReadPtr(txn, c7)
		p8, _ := tryReadPtr(txn, c8)
		out = fn(p1, p2, p3, p4, p5, p6, p7, p8)
	})
	return out
}
