package capsule

// Read returns the capsule's data, initializing the capsule if needed.
//
// Reads of several capsules that belong together must go through a single
// ReadN call: each ReadN observes all of its capsules under one transaction,
// so no concurrent rebuild can tear the result, whereas back-to-back Read
// calls can interleave with a writer. All ReadN functions first attempt a
// cheap shared-read fast path and only fall back to a write transaction when
// some capsule has no cached data yet.
func Read[T1 any](c *Container, c1 Capsule[T1]) T1 {
	var v1 T1
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		v1, ok = TryRead(txn, c1)
	})
	if ok {
		containerReadHitCount.Inc()
		return v1
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
	})
	return v1
}

// Read2 atomically reads two capsules. See Read.
func Read2[T1, T2 any](c *Container, c1 Capsule[T1], c2 Capsule[T2]) (T1, T2) {
	var (
		v1 T1
		v2 T2
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		ok = ok1 && ok2
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
	})
	return v1, v2
}

// Read3 atomically reads three capsules. See Read.
func Read3[T1, T2, T3 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3]) (T1, T2, T3) {
	var (
		v1 T1
		v2 T2
		v3 T3
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		ok = ok1 && ok2 && ok3
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
	})
	return v1, v2, v3
}

// Read4 atomically reads four capsules. See Read.
func Read4[T1, T2, T3, T4 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4]) (T1, T2, T3, T4) {
	var (
		v1 T1
		v2 T2
		v3 T3
		v4 T4
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3, ok4 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		v4, ok4 = TryRead(txn, c4)
		ok = ok1 && ok2 && ok3 && ok4
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3, v4
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
		v4 = ReadOrInit(txn, c4)
	})
	return v1, v2, v3, v4
}

// Read5 atomically reads five capsules. See Read.
func Read5[T1, T2, T3, T4, T5 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5]) (T1, T2, T3, T4, T5) {
	var (
		v1 T1
		v2 T2
		v3 T3
		v4 T4
		v5 T5
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3, ok4, ok5 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		v4, ok4 = TryRead(txn, c4)
		v5, ok5 = TryRead(txn, c5)
		ok = ok1 && ok2 && ok3 && ok4 && ok5
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3, v4, v5
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
		v4 = ReadOrInit(txn, c4)
		v5 = ReadOrInit(txn, c5)
	})
	return v1, v2, v3, v4, v5
}

// Read6 atomically reads six capsules. See Read.
func Read6[T1, T2, T3, T4, T5, T6 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6]) (T1, T2, T3, T4, T5, T6) {
	var (
		v1 T1
		v2 T2
		v3 T3
		v4 T4
		v5 T5
		v6 T6
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3, ok4, ok5, ok6 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		v4, ok4 = TryRead(txn, c4)
		v5, ok5 = TryRead(txn, c5)
		v6, ok6 = TryRead(txn, c6)
		ok = ok1 && ok2 && ok3 && ok4 && ok5 && ok6
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3, v4, v5, v6
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
		v4 = ReadOrInit(txn, c4)
		v5 = ReadOrInit(txn, c5)
		v6 = ReadOrInit(txn, c6)
	})
	return v1, v2, v3, v4, v5, v6
}

// Read7 atomically reads seven capsules. See Read.
func Read7[T1, T2, T3, T4, T5, T6, T7 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6], c7 Capsule[T7]) (T1, T2, T3, T4, T5, T6, T7) {
	var (
		v1 T1
		v2 T2
		v3 T3
		v4 T4
		v5 T5
		v6 T6
		v7 T7
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3, ok4, ok5, ok6, ok7 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		v4, ok4 = TryRead(txn, c4)
		v5, ok5 = TryRead(txn, c5)
		v6, ok6 = TryRead(txn, c6)
		v7, ok7 = TryRead(txn, c7)
		ok = ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3, v4, v5, v6, v7
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
		v4 = ReadOrInit(txn, c4)
		v5 = ReadOrInit(txn, c5)
		v6 = ReadOrInit(txn, c6)
		v7 = ReadOrInit(txn, c7)
	})
	return v1, v2, v3, v4, v5, v6, v7
}

// Read8 atomically reads eight capsules. See Read.
func Read8[T1, T2, T3, T4, T5, T6, T7, T8 any](c *Container, c1 Capsule[T1], c2 Capsule[T2], c3 Capsule[T3], c4 Capsule[T4], c5 Capsule[T5], c6 Capsule[T6], c7 Capsule[T7], c8 Capsule[T8]) (T1, T2, T3, T4, T5, T6, T7, T8) {
	var (
		v1 T1
		v2 T2
		v3 T3
		v4 T4
		v5 T5
		v6 T6
		v7 T7
		v8 T8
	)
	ok := false
	c.WithReadTxn(func(txn *ReadTxn) {
		var ok1, ok2, ok3, ok4, ok5, ok6, ok7, ok8 bool
		v1, ok1 = TryRead(txn, c1)
		v2, ok2 = TryRead(txn, c2)
		v3, ok3 = TryRead(txn, c3)
		v4, ok4 = TryRead(txn, c4)
		v5, ok5 = TryRead(txn, c5)
		v6, ok6 = TryRead(txn, c6)
		v7, ok7 = TryRead(txn, c7)
		v8, ok8 = TryRead(txn, c8)
		ok = ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8
	})
	if ok {
		containerReadHitCount.Inc()
		return v1, v2, v3, v4, v5, v6, v7, v8
	}
	containerReadMissCount.Inc()
	c.WithWriteTxn(func(txn *WriteTxn) {
		v1 = ReadOrInit(txn, c1)
		v2 = ReadOrInit(txn, c2)
		v3 = ReadOrInit(txn, c3)
		v4 = ReadOrInit(txn, c4)
		v5 = ReadOrInit(txn, c5)
		v6 = ReadOrInit(txn, c6)
		v7 = ReadOrInit(txn, c7)
		v8 = ReadOrInit(txn, c8)
	})
	return v1, v2, v3, v4, v5, v6, v7, v8
}
