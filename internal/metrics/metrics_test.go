package metrics

import "testing"

func TestMockRecordsCountsAndHists(t *testing.T) {
	m := NewMock()
	m.IncCounter("ingest_jobs_total", map[string]string{"status": "completed"})
	m.IncCounter("ingest_jobs_total", map[string]string{"status": "completed"})
	m.ObserveHistogram("ingest_job_duration_ms", 12, map[string]string{"stage": "chunking"})
	m.ObserveHistogram("ingest_job_duration_ms", 34, map[string]string{"stage": "embedding"})

	if m.Counters["ingest_jobs_total"] != 2 {
		t.Fatalf("expected 2 jobs, got %d", m.Counters["ingest_jobs_total"])
	}
	if len(m.Hists["ingest_job_duration_ms"]) != 2 {
		t.Fatalf("expected 2 histogram records, got %d", len(m.Hists["ingest_job_duration_ms"]))
	}
}

func TestNoopIsSafeToCallOnNilMetrics(t *testing.T) {
	var n Noop
	n.IncCounter("x", nil)
	n.ObserveHistogram("y", 1, nil)
}

func TestOtelMetricsNilReceiverIsSafe(t *testing.T) {
	var o *OtelMetrics
	o.IncCounter("x", nil)
	o.ObserveHistogram("y", 1, nil)
}
