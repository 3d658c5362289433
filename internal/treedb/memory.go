package treedb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-process Store used in tests and for embedded sessions that
// have no remote backend configured.
type Memory struct {
	mu     sync.Mutex
	leaves map[string]json.RawMessage
	subs   map[int]*memSub
	nextID int
}

type memSub struct {
	path string
	ch   chan json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{
		leaves: make(map[string]json.RawMessage),
		subs:   make(map[int]*memSub),
	}
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(path)
}

func (m *Memory) Update(_ context.Context, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := make([]string, 0, len(updates))
	for path, value := range updates {
		path = joinPath(splitPath(path))
		if path == "" {
			continue
		}
		m.deleteSubtree(path)
		if value != nil {
			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode %s: %w", path, err)
			}
			m.leaves[path] = data
		}
		changed = append(changed, path)
	}
	m.notify(changed)
	return nil
}

func (m *Memory) Subscribe(path string) (*Subscription, error) {
	path = joinPath(splitPath(path))
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	sub := &memSub{path: path, ch: make(chan json.RawMessage, 1)}
	m.subs[id] = sub

	// Initial snapshot fires immediately.
	snap, err := m.snapshot(path)
	if err != nil {
		delete(m.subs, id)
		return nil, err
	}
	sub.ch <- snap

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if s, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(s.ch)
		}
	}
	return &Subscription{C: sub.ch, cancel: cancel}, nil
}

// snapshot assumes m.mu is held.
func (m *Memory) snapshot(path string) (json.RawMessage, error) {
	path = joinPath(splitPath(path))
	matched := make(map[string]json.RawMessage)
	for leaf, value := range m.leaves {
		switch {
		case leaf == path:
			matched[""] = value
		case path == "" || strings.HasPrefix(leaf, path+"/"):
			matched[strings.TrimPrefix(leaf, path+"/")] = value
		}
	}
	return assemble(matched)
}

// deleteSubtree assumes m.mu is held.
func (m *Memory) deleteSubtree(path string) {
	delete(m.leaves, path)
	for leaf := range m.leaves {
		if strings.HasPrefix(leaf, path+"/") {
			delete(m.leaves, leaf)
		}
	}
}

// notify assumes m.mu is held.
func (m *Memory) notify(changed []string) {
	for _, sub := range m.subs {
		affected := false
		for _, path := range changed {
			if related(sub.path, path) {
				affected = true
				break
			}
		}
		if !affected {
			continue
		}
		snap, err := m.snapshot(sub.path)
		if err != nil {
			continue
		}
		coalesce(sub.ch, snap)
	}
}
