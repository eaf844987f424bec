package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "segment") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "validate") {
		t.Error("first event should log")
	}
	if s.ShouldLog(5, "validate") {
		t.Error("same bucket should not log")
	}
	if !s.ShouldLog(12, "validate") {
		t.Error("next bucket should log")
	}
	if !s.ShouldLog(12, "segment") {
		t.Error("phase change should log")
	}
	if !s.ShouldLog(100, "segment") {
		t.Error("completion should log")
	}
	if s.ShouldLog(100, "segment") {
		t.Error("repeated completion should not log")
	}

	s.Reset()
	if !s.ShouldLog(0, "segment") {
		t.Error("after reset the first event should log")
	}
}
