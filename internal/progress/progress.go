package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/status"
)

// UnknownTotal is used for TotalBytes when the server did not advertise a
// content length, or advertised one that cannot be trusted.
const UnknownTotal int64 = -1

// Progress is a single observation of a fetch in flight.
type Progress struct {
	JobID          uuid.UUID
	BytesCompleted int64
	TotalBytes     int64 // UnknownTotal when the expected length is not known
	Speed          int64 // bytes/sec
	Status         status.Status
	Error          error
	Timestamp      time.Time
}

// KnownTotal reports whether the expected length was advertised.
func (p Progress) KnownTotal() bool {
	return p.TotalBytes >= 0
}

// Ratio returns completion in [0, 1], or -1 when the total is unknown.
func (p Progress) Ratio() float64 {
	if p.TotalBytes <= 0 {
		if p.TotalBytes == 0 && p.BytesCompleted == 0 {
			return 1
		}
		return -1
	}

	r := float64(p.BytesCompleted) / float64(p.TotalBytes)
	if r > 1 {
		r = 1
	}

	return r
}

// SpeedCalculator keeps a sliding window of per-second byte counts and
// reports the average transfer speed over that window.
type SpeedCalculator struct {
	mu         sync.Mutex
	samples    []int64
	windowSize int
	current    int64
	lastRotate time.Time
}

// NewSpeedCalculator creates a calculator averaging over windowSize seconds.
func NewSpeedCalculator(windowSize int) *SpeedCalculator {
	if windowSize <= 0 {
		windowSize = 5
	}

	return &SpeedCalculator{
		windowSize: windowSize,
		lastRotate: time.Now(),
	}
}

// AddBytes records n bytes received now.
func (s *SpeedCalculator) AddBytes(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotate(time.Now())
	s.current += n
}

// GetSpeed returns the average speed in bytes/sec across the window.
func (s *SpeedCalculator) GetSpeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotate(time.Now())

	total := s.current
	for _, v := range s.samples {
		total += v
	}

	seconds := int64(len(s.samples) + 1)

	return total / seconds
}

// rotate shifts the current bucket into the window for every elapsed second.
// Caller must hold s.mu.
func (s *SpeedCalculator) rotate(now time.Time) {
	elapsed := int(now.Sub(s.lastRotate) / time.Second)
	if elapsed <= 0 {
		return
	}

	if elapsed > s.windowSize+1 {
		elapsed = s.windowSize + 1
	}

	for i := 0; i < elapsed; i++ {
		s.samples = append(s.samples, s.current)
		s.current = 0

		if len(s.samples) > s.windowSize {
			s.samples = s.samples[1:]
		}
	}

	s.lastRotate = now
}
