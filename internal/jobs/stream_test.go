package jobs

import (
	"context"
	"testing"
	"time"

	"ragcore/internal/ragtypes"
)

func collect(t *testing.T, ch <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("stream did not close; got %d events so far", len(events))
		}
	}
}

func TestStreamDeliversSnapshotsInOrderWithDoneMarker(t *testing.T) {
	m := New()
	s := m.Create("report.pdf", "t1")

	ch, ok := m.Stream(context.Background(), s.JobID)
	if !ok {
		t.Fatal("Stream reported job not found")
	}

	go func() {
		m.Update(s.JobID, Update{Status: ragtypes.JobStatusRunning, Stage: ragtypes.JobStageParsing})
		m.Update(s.JobID, Update{Stage: ragtypes.JobStageChunking})
		m.Update(s.JobID, Update{Status: ragtypes.JobStatusCompleted, Stage: ragtypes.JobStageCompleted})
	}()

	events := collect(t, ch)
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5 (4 snapshots + done): %+v", len(events), events)
	}
	wantStages := []ragtypes.JobStage{
		ragtypes.JobStageQueued,
		ragtypes.JobStageParsing,
		ragtypes.JobStageChunking,
		ragtypes.JobStageCompleted,
	}
	for i, stage := range wantStages {
		if events[i].Done {
			t.Fatalf("event %d is a premature done marker", i)
		}
		if events[i].State.Stage != stage {
			t.Fatalf("event %d stage = %q, want %q", i, events[i].State.Stage, stage)
		}
	}
	if !events[4].Done {
		t.Fatalf("last event is not the done marker: %+v", events[4])
	}
	for i := 1; i < 4; i++ {
		if events[i].State.UpdatedAt.Before(events[i-1].State.UpdatedAt) {
			t.Fatalf("updated_at regressed between events %d and %d", i-1, i)
		}
	}
}

func TestStreamOnTerminalJobReplaysAndCloses(t *testing.T) {
	m := New()
	s := m.Create("f.txt", "t1")
	m.Update(s.JobID, Update{Status: ragtypes.JobStatusFailed, Stage: ragtypes.JobStageFailed, Error: strp("boom")})

	ch, ok := m.Stream(context.Background(), s.JobID)
	if !ok {
		t.Fatal("Stream reported job not found")
	}
	events := collect(t, ch)
	if len(events) != 2 {
		t.Fatalf("got %d events, want terminal snapshot + done: %+v", len(events), events)
	}
	if events[0].State.Status != ragtypes.JobStatusFailed || events[0].State.Error != "boom" {
		t.Fatalf("unexpected terminal snapshot: %+v", events[0].State)
	}
	if !events[1].Done {
		t.Fatal("missing done marker after terminal replay")
	}
}

func TestStreamUnknownJob(t *testing.T) {
	m := New()
	if _, ok := m.Stream(context.Background(), "nope"); ok {
		t.Fatal("expected not found for unknown job id")
	}
}

func TestStreamCancelDetachesWithoutAffectingJob(t *testing.T) {
	m := New()
	s := m.Create("big.pdf", "t1")

	ctx, cancel := context.WithCancel(context.Background())
	ch, ok := m.Stream(ctx, s.JobID)
	if !ok {
		t.Fatal("Stream reported job not found")
	}
	<-ch // initial queued snapshot
	cancel()

	// The channel closes without a done marker once the consumer goes away.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				goto closed
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
closed:

	// Job progress is unaffected by the departed subscriber.
	if _, ok := m.Update(s.JobID, Update{Status: ragtypes.JobStatusCompleted, Stage: ragtypes.JobStageCompleted}); !ok {
		t.Fatal("Update failed after subscriber cancellation")
	}
	got, _ := m.Get(s.JobID)
	if got.Status != ragtypes.JobStatusCompleted {
		t.Fatalf("job did not progress: %+v", got)
	}
}

func strp(s string) *string { return &s }
