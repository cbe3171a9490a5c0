package cronrunner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunner_RunsAndSurvivesFailures(t *testing.T) {
	r := New(nil, context.Background())
	var ok, failed, panicked atomic.Int32
	if _, err := r.Add("ok", "@every 1s", func(context.Context) error { ok.Add(1); return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Add("fail", "@every 1s", func(context.Context) error { failed.Add(1); return errors.New("boom") }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Add("panic", "@every 1s", func(context.Context) error { panicked.Add(1); panic("boom") }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if r.Entries() != 3 {
		t.Fatalf("entries=%d want=3", r.Entries())
	}
	r.Start()
	time.Sleep(2500 * time.Millisecond)
	r.Stop()

	if ok.Load() < 2 || failed.Load() < 2 || panicked.Load() < 2 {
		t.Fatalf("ok=%d failed=%d panicked=%d want each >= 2", ok.Load(), failed.Load(), panicked.Load())
	}
}

func TestRunner_InvalidSpec(t *testing.T) {
	r := New(nil, context.Background())
	if _, err := r.Add("bad", "not a spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}
