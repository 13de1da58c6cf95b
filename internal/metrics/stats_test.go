package metrics

import (
	"testing"
	"time"
)

func TestConversionStatsSnapshotPercentiles(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record("export:docx", ms)
	}

	snap := stats.Snapshot("export:docx")
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestConversionStatsKeysAreIndependent(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	stats.Record("import:docx", 10)
	stats.Record("export:pdf", 20)
	stats.Record("export:pdf", 40)

	all := stats.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(all))
	}
	if all["import:docx"].Count != 1 {
		t.Fatalf("expected import:docx count=1, got %d", all["import:docx"].Count)
	}
	if all["export:pdf"].AvgMs != 30 {
		t.Fatalf("expected export:pdf avg=30, got %f", all["export:pdf"].AvgMs)
	}
	if snap := stats.Snapshot("export:md"); snap.Count != 0 {
		t.Fatalf("expected empty snapshot for unknown key, got %d", snap.Count)
	}
}

func TestConversionStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewConversionStats(10 * time.Millisecond)
	stats.Record("k", 100)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot("k"); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	if all := stats.All(); len(all) != 0 {
		t.Fatalf("expected expired keys dropped, got %d", len(all))
	}

	stats.Record("k", 200)
	snap := stats.Snapshot("k")
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestConversionStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	stats.Record("k", -10)
	snap := stats.Snapshot("k")
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
