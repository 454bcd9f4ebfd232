package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/techmart-analytics/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	started := time.Now()
	job := &jobs.RefreshJob{JobID: "a", Status: jobs.JobStatusRunning, StartedAt: &started}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	// Later changes by the caller must not leak into the store.
	job.Status = jobs.JobStatusFailed
	*job.StartedAt = started.Add(time.Hour)

	got, err := s.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != jobs.JobStatusRunning {
		t.Errorf("Status = %q, want running", got.Status)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, &jobs.RefreshJob{}); err == nil {
		t.Error("expected error for missing job ID")
	}
	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, st := range []jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusFailed, jobs.JobStatusCompleted, jobs.JobStatusPending} {
		s.SaveJob(ctx, &jobs.RefreshJob{
			JobID:     string(rune('a' + i)),
			Status:    st,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"d", "c", "b", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusCompleted}, []string{"c", "a"}},
		{"limit", jobs.JobFilter{Limit: 2}, []string{"d", "c"}},
		{"offset", jobs.JobFilter{Offset: 3}, []string{"a"}},
		{"offset past end", jobs.JobFilter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d jobs, want %d", len(got), len(tt.want))
			}
			for i, job := range got {
				if job.JobID != tt.want[i] {
					t.Errorf("job[%d] = %s, want %s", i, job.JobID, tt.want[i])
				}
			}
		})
	}
}
