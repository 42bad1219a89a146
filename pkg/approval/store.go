package approval

import (
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Request is an approval request that is waiting for a decision.
type Request struct {
	RequesterID string
	ApproverID  string
	Reason      string
	CreatedAt   time.Time
}

// Store maps opaque request IDs to pending approval requests. A request
// is pending if and only if it is present in the store: terminal
// decisions remove it, and a removed ID can never be decided again.
type Store struct {
	mu      sync.Mutex
	pending map[string]Request
}

func NewStore() *Store {
	return &Store{pending: make(map[string]Request)}
}

// Create saves a new pending request and returns its unique ID. The ID is
// embedded in the approver's notification message, so that a later
// decision callback can be correlated back to this request.
func (s *Store) Create(req Request) string {
	id := "request_" + shortuuid.New()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = req
	return id
}

// TakeIfPending removes and returns the pending request with the given
// ID. The check and the removal are a single atomic step, so concurrent
// decision callbacks for the same ID resolve to exactly one winner - all
// others are told the request doesn't exist.
func (s *Store) TakeIfPending(id string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return req, ok
}

// Restore puts back a taken request that could not be resolved, so the
// approver can retry the same decision later.
func (s *Store) Restore(id string, req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = req
}

// Delete discards a pending request, e.g. to roll back [Store.Create]
// when the approver could not be notified about it.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
}

// Len reports the number of pending requests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}
