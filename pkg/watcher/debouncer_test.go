package watcher

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func receiveBatch(t *testing.T, d *Debouncer) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-d.Output():
		if !ok {
			t.Fatal("Output channel closed before a batch arrived")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for debounced batch")
	}
	return ChangeEvent{}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 20*time.Millisecond, 500*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A burst of three quick saves should come out as one batch
	for i := 0; i < 3; i++ {
		input <- ChangeEvent{
			Type:      ChangeTypeSource,
			Paths:     []string{fmt.Sprintf("src/f%d.ts", i)},
			Timestamp: time.Now(),
		}
	}

	ev := receiveBatch(t, d)
	if ev.Type != ChangeTypeSource {
		t.Errorf("Expected a source batch, got %v", ev.Type)
	}
	if len(ev.Paths) != 3 {
		t.Errorf("Expected 3 coalesced paths, got %d: %v", len(ev.Paths), ev.Paths)
	}
}

func TestDebouncer_TreeChangesFlushFirst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 20*time.Millisecond, 500*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"src/a.ts"}}
	input <- ChangeEvent{Type: ChangeTypeTree, Paths: []string{"src/newdir"}}

	first := receiveBatch(t, d)
	if first.Type != ChangeTypeTree {
		t.Errorf("Expected tree changes flushed first, got %v", first.Type)
	}
	second := receiveBatch(t, d)
	if second.Type != ChangeTypeSource {
		t.Errorf("Expected source changes after tree changes, got %v", second.Type)
	}
}

func TestDebouncer_ClosedInputFlushesPending(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeSource, Paths: []string{"src/a.ts"}}
	close(input)

	ev := receiveBatch(t, d)
	if len(ev.Paths) != 1 || ev.Paths[0] != "src/a.ts" {
		t.Errorf("Expected the pending event flushed on close, got %v", ev.Paths)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("Expected the output channel closed after the input closed")
	}
}

func TestAnalyzeChanges_TreeChangeForcesRescan(t *testing.T) {
	tree := AnalyzeChanges(ChangeEvent{Type: ChangeTypeTree, Paths: []string{"src/newdir"}})
	if !tree.NeedRescan || !tree.NeedReanalysis {
		t.Errorf("Expected tree changes to force rescan and reanalysis, got %+v", tree)
	}

	source := AnalyzeChanges(ChangeEvent{Type: ChangeTypeSource, Paths: []string{"src/a.ts"}})
	if source.NeedRescan {
		t.Error("Expected source changes to keep the discovered file set")
	}
	if !source.NeedReanalysis {
		t.Error("Expected source changes to force reanalysis")
	}
}
