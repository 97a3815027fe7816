// Copyright 2025 Hyperterse
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// sessionBufferSize bounds each subscriber's buffer. Publishing to a full
// buffer drops the message for that subscriber: slow SSE readers lose events
// and must reconnect.
const sessionBufferSize = 128

// Session is the server-side record of one MCP client. Events fan out to
// every subscriber; sends and close are serialized under mu so a publish
// racing session deletion fails cleanly instead of hitting a closed channel.
type Session struct {
	ID      string
	counter atomic.Uint64

	mu          sync.Mutex
	subscribers map[uint64]chan interface{}
	nextSub     uint64
	closed      bool
}

func newSession() *Session {
	return &Session{
		ID:          uuid.NewString(),
		subscribers: make(map[uint64]chan interface{}),
	}
}

// NextEventID returns a fresh monotonically increasing event id
func (s *Session) NextEventID() uint64 {
	return s.counter.Add(1)
}

// Subscribe registers a receiver for the session's events. The returned
// cancel function detaches it; the channel closes on cancel or when the
// session is deleted. Subscribing to a closed session yields a closed channel.
func (s *Session) Subscribe() (<-chan interface{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan interface{}, sessionBufferSize)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish offers a value to every subscriber's buffer. Returns false if the
// session is closed or any subscriber's buffer was full and dropped the value.
func (s *Session) Publish(v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	delivered := true
	for _, ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			delivered = false
		}
	}
	return delivered
}

func (s *Session) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// SessionStore guards the id-to-session map for concurrent readers
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session under a fresh UUID
func (st *SessionStore) Create() *Session {
	session := newSession()
	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()
	promSessionsActive.Inc()
	return session
}

// Get returns the session with the given id
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Delete destroys the session with the given id. Returns false if unknown.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	session, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if ok {
		session.close()
		promSessionsActive.Dec()
	}
	return ok
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
