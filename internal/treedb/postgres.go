package treedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

const notifyChannel = "treedb_changes"

// Postgres is the durable Store backing the sync server. Leaves live as rows
// in tree_nodes; change fan-out rides LISTEN/NOTIFY so every server process
// sees writes from every other one.
type Postgres struct {
	db       *sql.DB
	listener *pq.Listener

	mu     sync.Mutex
	subs   map[int]*pgSub
	nextID int
}

type pgSub struct {
	path string
	ch   chan json.RawMessage
}

// NewPostgres starts the notification listener with the same conninfo the
// *sql.DB was opened with.
func NewPostgres(db *sql.DB, conninfo string) (*Postgres, error) {
	p := &Postgres{
		db:   db,
		subs: make(map[int]*pgSub),
	}
	p.listener = pq.NewListener(conninfo, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("[treedb] listener event %v: %v", ev, err)
		}
	})
	if err := p.listener.Listen(notifyChannel); err != nil {
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}
	go p.dispatch()
	return p, nil
}

func (p *Postgres) Close() error {
	return p.listener.Close()
}

func (p *Postgres) Get(ctx context.Context, path string) (json.RawMessage, error) {
	path = joinPath(splitPath(path))
	rows, err := p.db.QueryContext(ctx,
		`SELECT path, value FROM tree_nodes WHERE path = $1 OR path LIKE $2`,
		path, path+"/%",
	)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer rows.Close()

	matched := make(map[string]json.RawMessage)
	for rows.Next() {
		var leaf string
		var value []byte
		if err := rows.Scan(&leaf, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		if leaf == path {
			matched[""] = json.RawMessage(value)
		} else {
			matched[strings.TrimPrefix(leaf, path+"/")] = json.RawMessage(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return assemble(matched)
}

func (p *Postgres) Update(ctx context.Context, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Stable order keeps concurrent multi-path writes from deadlocking.
	paths := make([]string, 0, len(updates))
	for path := range updates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, rawPath := range paths {
		path := joinPath(splitPath(rawPath))
		if path == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tree_nodes WHERE path = $1 OR path LIKE $2`,
			path, path+"/%",
		); err != nil {
			return fmt.Errorf("clear %s: %w", path, err)
		}
		if value := updates[rawPath]; value != nil {
			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode %s: %w", path, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tree_nodes (path, value) VALUES ($1, $2)`,
				path, data,
			); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		// Delivered to listeners on commit.
		if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path); err != nil {
			return fmt.Errorf("notify %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) Subscribe(path string) (*Subscription, error) {
	path = joinPath(splitPath(path))

	snap, err := p.Get(context.Background(), path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	sub := &pgSub{path: path, ch: make(chan json.RawMessage, 1)}
	p.subs[id] = sub
	p.mu.Unlock()

	sub.ch <- snap

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if s, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(s.ch)
		}
	}
	return &Subscription{C: sub.ch, cancel: cancel}, nil
}

// dispatch fans notifications out to affected subscribers. A nil
// notification means the connection was re-established and state may have
// been missed, so every subscriber gets a fresh snapshot.
func (p *Postgres) dispatch() {
	for n := range p.listener.Notify {
		changed := ""
		if n != nil {
			changed = n.Extra
		}

		p.mu.Lock()
		targets := make([]*pgSub, 0, len(p.subs))
		for _, sub := range p.subs {
			if n == nil || related(sub.path, changed) {
				targets = append(targets, sub)
			}
		}
		p.mu.Unlock()

		for _, sub := range targets {
			snap, err := p.Get(context.Background(), sub.path)
			if err != nil {
				log.Printf("[treedb] snapshot %s: %v", sub.path, err)
				continue
			}
			p.mu.Lock()
			if p.alive(sub) {
				coalesce(sub.ch, snap)
			}
			p.mu.Unlock()
		}
	}
}

// alive assumes p.mu is held.
func (p *Postgres) alive(sub *pgSub) bool {
	for _, s := range p.subs {
		if s == sub {
			return true
		}
	}
	return false
}
