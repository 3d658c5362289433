// Package treedb is a tree-structured key-value store with multi-path writes
// and live change subscriptions. Paths are slash-separated; leaves hold JSON
// values. Writing nil to a path deletes the subtree beneath it, and
// subscribers of a path receive the full subtree snapshot once immediately on
// subscribe and again after every change under it.
package treedb

import (
	"context"
	"encoding/json"
	"strings"
)

// Store is the tree database contract shared by the in-memory and Postgres
// implementations.
type Store interface {
	// Get returns the subtree at path as nested JSON, or nil when absent.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Update applies a batched multi-path write atomically. Values marshal
	// to JSON leaves; a nil value deletes the subtree at its path.
	Update(ctx context.Context, updates map[string]any) error
	// Subscribe returns a subscription for the subtree at path.
	Subscribe(path string) (*Subscription, error)
}

// Subscription delivers subtree snapshots. Snapshots coalesce: a slow
// consumer sees the latest state, not every intermediate write. Cancel stops
// delivery and closes C.
type Subscription struct {
	// C carries the subtree as nested JSON; nil means the subtree is absent.
	C <-chan json.RawMessage

	cancel func()
}

func (s *Subscription) Cancel() {
	s.cancel()
}

// ── Path helpers ─────────────────────────────────────────

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func joinPath(segs []string) string {
	return strings.Join(segs, "/")
}

// related reports whether a write at changed can affect the subtree at sub:
// one path is a prefix of the other.
func related(sub, changed string) bool {
	return sub == changed ||
		strings.HasPrefix(changed, sub+"/") ||
		strings.HasPrefix(sub, changed+"/")
}

// assemble builds the nested JSON object for a set of leaf rows, keyed by
// path relative to the requested root. An empty map yields nil.
func assemble(leaves map[string]json.RawMessage) (json.RawMessage, error) {
	if len(leaves) == 0 {
		return nil, nil
	}
	// A single leaf at the root itself is returned as-is.
	if v, ok := leaves[""]; ok && len(leaves) == 1 {
		return v, nil
	}
	root := make(map[string]any)
	for rel, value := range leaves {
		segs := splitPath(rel)
		if len(segs) == 0 {
			continue
		}
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segs[len(segs)-1]] = value
	}
	return json.Marshal(root)
}

// coalesce delivers snap on ch, replacing an undelivered older snapshot.
// ch must have capacity 1.
func coalesce(ch chan json.RawMessage, snap json.RawMessage) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
