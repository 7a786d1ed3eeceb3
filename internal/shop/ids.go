package shop

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// idSource hands out strictly increasing millisecond stamps so ids derived
// from the clock stay unique within a process.
type idSource struct {
	mu    sync.Mutex
	clock func() time.Time
	last  int64
}

func newIDSource(clock func() time.Time) *idSource {
	return &idSource{clock: clock}
}

func (s *idSource) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp := s.clock().UnixMilli()
	if stamp <= s.last {
		stamp = s.last + 1
	}
	s.last = stamp
	return stamp
}

func (s *idSource) token() string {
	return strconv.FormatInt(s.next(), 10)
}

func (s *idSource) orderID() string {
	return "ORD" + s.token()
}

func (s *idSource) returnID() string {
	return "RET" + s.token()
}

func trackingNumber() string {
	return "TRK" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
