package jobs

import (
	"sync"
	"testing"

	"ragcore/internal/ragtypes"
)

func TestCreateAssignsQueuedState(t *testing.T) {
	m := New()
	s := m.Create("report.pdf", "t1")
	if s.JobID == "" {
		t.Fatal("expected a non-empty job id")
	}
	if s.Status != ragtypes.JobStatusQueued || s.Stage != ragtypes.JobStageQueued {
		t.Fatalf("got status=%q stage=%q, want queued/queued", s.Status, s.Stage)
	}
	got, ok := m.Get(s.JobID)
	if !ok || got.JobID != s.JobID {
		t.Fatalf("Get after Create = %+v, %v", got, ok)
	}
}

func TestGetUnknownJob(t *testing.T) {
	m := New()
	if _, ok := m.Get("nope"); ok {
		t.Fatal("expected Get on unknown id to report not found")
	}
}

func TestUpdatePartialFieldsAndTerminal(t *testing.T) {
	m := New()
	s := m.Create("f.pdf", "t1")

	stage := ragtypes.JobStageParsing
	s2, ok := m.Update(s.JobID, Update{Status: ragtypes.JobStatusRunning, Stage: stage})
	if !ok {
		t.Fatal("Update returned not found")
	}
	if s2.Status != ragtypes.JobStatusRunning || s2.Stage != ragtypes.JobStageParsing {
		t.Fatalf("got %+v", s2)
	}
	if !s2.UpdatedAt.After(s.UpdatedAt) && s2.UpdatedAt != s.UpdatedAt {
		t.Fatalf("updated_at did not advance")
	}
	if s2.CompletedAt != nil {
		t.Fatal("non-terminal update should not set completed_at")
	}

	docID := "doc-1"
	s3, _ := m.Update(s.JobID, Update{Status: ragtypes.JobStatusCompleted, Stage: ragtypes.JobStageCompleted, DocumentID: &docID})
	if s3.DocumentID != "doc-1" {
		t.Fatalf("DocumentID = %q, want doc-1", s3.DocumentID)
	}
	if s3.CompletedAt == nil {
		t.Fatal("terminal update should set completed_at")
	}

	// Further updates after terminal are rejected (state unchanged, no panic).
	msg := "late message"
	s4, ok := m.Update(s.JobID, Update{Message: &msg})
	if !ok {
		t.Fatal("Update on terminal job should still report found")
	}
	if s4.Message != "" {
		t.Fatalf("update after terminal state must be ignored, got message %q", s4.Message)
	}
	if s4.CompletedAt == nil || !s4.CompletedAt.Equal(*s3.CompletedAt) {
		t.Fatal("completed_at must not change once set")
	}
}

func TestSubscribeReceivesOrderedDeliveries(t *testing.T) {
	m := New()
	s := m.Create("f.pdf", "t1")

	var mu sync.Mutex
	var stages []ragtypes.JobStage
	unsub := m.Subscribe(s.JobID, func(st ragtypes.JobState) {
		mu.Lock()
		stages = append(stages, st.Stage)
		mu.Unlock()
	})
	defer unsub()

	m.Update(s.JobID, Update{Status: ragtypes.JobStatusRunning, Stage: ragtypes.JobStageParsing})
	m.Update(s.JobID, Update{Stage: ragtypes.JobStageChunking})
	m.Update(s.JobID, Update{Status: ragtypes.JobStatusCompleted, Stage: ragtypes.JobStageCompleted})

	mu.Lock()
	defer mu.Unlock()
	want := []ragtypes.JobStage{ragtypes.JobStageParsing, ragtypes.JobStageChunking, ragtypes.JobStageCompleted}
	if len(stages) != len(want) {
		t.Fatalf("got %v deliveries, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("delivery %d = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	m := New()
	s := m.Create("f.pdf", "t1")

	count := 0
	unsub := m.Subscribe(s.JobID, func(ragtypes.JobState) { count++ })
	m.Update(s.JobID, Update{Status: ragtypes.JobStatusRunning, Stage: ragtypes.JobStageParsing})
	unsub()
	m.Update(s.JobID, Update{Stage: ragtypes.JobStageChunking})

	if count != 1 {
		t.Fatalf("count = %d, want 1 delivery before unsubscribe", count)
	}
}

func TestSubscribeUnknownJobIsNoop(t *testing.T) {
	m := New()
	unsub := m.Subscribe("ghost", func(ragtypes.JobState) { t.Fatal("should never be called") })
	unsub()
}
