package reactive

import (
	"context"
	"testing"
)

func TestBatchSingleNotification(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	c := NewSignal(0)

	listener := newTestListener()
	WithListener(listener, func() {
		_ = a.Get()
		_ = b.Get()
		_ = c.Get()
	})

	Batch(func() {
		a.Set(1)
		b.Set(2)
		c.Set(3)
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification (batched), got %d", listener.getDirtyCount())
	}
}

func TestBatchNested(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() { _ = count.Get() })

	Batch(func() {
		count.Set(1)
		Batch(func() {
			count.Set(2)
		})
		if listener.getDirtyCount() != 0 {
			t.Errorf("inner batch should not notify, got %d", listener.getDirtyCount())
		}
		if !InBatch() {
			t.Error("InBatch should be true inside Batch")
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after all batches, got %d", listener.getDirtyCount())
	}
	if InBatch() {
		t.Error("InBatch should be false after Batch returns")
	}
}

func TestBatchReadsLatestValue(t *testing.T) {
	s := NewSignal(0)
	Batch(func() {
		s.Set(7)
		if s.Get() != 7 {
			t.Errorf("read inside batch = %d, want 7", s.Get())
		}
	})
}

func TestBatchPanicStillFlushes(t *testing.T) {
	s := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() { _ = s.Get() })

	func() {
		defer func() { _ = recover() }()
		Batch(func() {
			s.Set(1)
			panic("boom")
		})
	}()

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected flush after panic, got %d", listener.getDirtyCount())
	}
	if InBatch() {
		t.Error("batch depth should be restored after panic")
	}
}

func TestUntracked(t *testing.T) {
	s := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() { _ = s.Get() })
		v := UntrackedValue(func() int { return s.Get() })
		_ = v
	})

	s.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("untracked read should not subscribe, got %d", listener.getDirtyCount())
	}
}

func TestTxNamed(t *testing.T) {
	a := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() { _ = a.Get() })

	TxNamedContext(context.Background(), "bulk-update", func() {
		a.Set(1)
		a.Set(2)
	})
	Tx(func() { a.Set(3) })
	TxNamed("noop", func() {})

	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}
