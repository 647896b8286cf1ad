package logging

const (
	defaultProgressBucketPercent = 10
	defaultProgressStepBytes     = 50 << 20
)

// ProgressSampler thins transfer progress into occasional log lines: one per
// percentage bucket when the total size is known, otherwise one per fixed
// number of bytes.
type ProgressSampler struct {
	bucketPercent float64
	stepBytes     int64
	lastBucket    int64
}

// NewProgressSampler constructs a sampler. Non-positive arguments select the
// defaults of 10% buckets and 50 MiB steps.
func NewProgressSampler(bucketPercent float64, stepBytes int64) *ProgressSampler {
	if bucketPercent <= 0 {
		bucketPercent = defaultProgressBucketPercent
	}
	if stepBytes <= 0 {
		stepBytes = defaultProgressStepBytes
	}
	return &ProgressSampler{bucketPercent: bucketPercent, stepBytes: stepBytes, lastBucket: -1}
}

// ShouldLog reports whether progress at done of total bytes deserves a line.
// A non-positive total means the size is unknown.
func (s *ProgressSampler) ShouldLog(done, total int64) bool {
	if s == nil {
		return true
	}
	var bucket int64
	if total > 0 {
		percent := float64(done) / float64(total) * 100
		if percent > 100 {
			percent = 100
		}
		bucket = int64(percent / s.bucketPercent)
	} else {
		bucket = done / s.stepBytes
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state before a new transfer.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
