package gatekeeper

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gin-contrib/sessions"
)

// SessionMailbox keeps pending submissions in the visitor's session. Values
// are stored url-encoded so any session store can serialise them.
type SessionMailbox struct {
	session sessions.Session
}

func NewSessionMailbox(s sessions.Session) *SessionMailbox {
	return &SessionMailbox{session: s}
}

func (m *SessionMailbox) Put(key string, data url.Values) error {
	m.session.Set(key, data.Encode())
	if err := m.session.Save(); err != nil {
		return fmt.Errorf("failed to save pending submission: %w", err)
	}
	return nil
}

func (m *SessionMailbox) Take(key string) (url.Values, bool, error) {
	raw, ok := m.session.Get(key).(string)
	if !ok {
		return nil, false, nil
	}
	m.session.Delete(key)
	if err := m.session.Save(); err != nil {
		return nil, false, fmt.Errorf("failed to consume pending submission: %w", err)
	}
	data, err := url.ParseQuery(raw)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt pending submission: %w", err)
	}
	return data, true, nil
}

// MemoryMailbox is a process-local Mailbox for a single visitor.
type MemoryMailbox struct {
	mu    sync.Mutex
	items map[string]url.Values
}

func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{items: make(map[string]url.Values)}
}

func (m *MemoryMailbox) Put(key string, data url.Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(url.Values, len(data))
	for k, v := range data {
		cp[k] = append([]string(nil), v...)
	}
	m.items[key] = cp
	return nil
}

func (m *MemoryMailbox) Take(key string) (url.Values, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[key]
	if ok {
		delete(m.items, key)
	}
	return data, ok, nil
}
