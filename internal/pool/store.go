package pool

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source produces a fresh snapshot. File and Postgres sources both satisfy
// it, so the store never cares where the pool lives.
type Source func() (*Snapshot, error)

// FileSource builds a Source over the pool file plus optional overrides.
func FileSource(path, overridesPath string) Source {
	return func() (*Snapshot, error) { return Load(path, overridesPath) }
}

// Store owns the current snapshot behind a message loop. Readers grab the
// snapshot pointer once per request; reloads swap the pointer in the loop,
// so an in-flight request keeps the version it started with. The pointer
// itself is atomic: the shutdown path reads it without the loop.
type Store struct {
	inbox  chan Msg
	snap   atomic.Pointer[Snapshot]
	source Source
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

type Msg interface{ isStoreMsg() }

// GetSnapshot replies with the current snapshot.
type GetSnapshot struct {
	Reply chan *Snapshot
}

// Reload re-runs the source. On failure the previous snapshot stays active
// and the error is replied (nil Reply is fine for fire-and-forget).
type Reload struct {
	Reply chan error
}

// Shutdown stops the loop and any watcher.
type Shutdown struct{}

type sourceChanged struct{ name string }

func (GetSnapshot) isStoreMsg()   {}
func (Reload) isStoreMsg()        {}
func (Shutdown) isStoreMsg()      {}
func (sourceChanged) isStoreMsg() {}

// NewStore performs the initial load (fatal on integrity failure) and starts
// the loop.
func NewStore(parent context.Context, source Source, log *zap.Logger) (*Store, error) {
	snap, err := source()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Store{
		inbox:  make(chan Msg, 16),
		source: source,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	s.snap.Store(snap)
	go s.loop()
	return s, nil
}

func (s *Store) Inbox() chan<- Msg { return s.inbox }

// Snapshot is the request-entry read. The returned snapshot is immutable.
// After shutdown the last active snapshot is still served; the inbox is
// buffered, so a send can succeed after the loop exits and the reply must
// not be waited on unconditionally.
func (s *Store) Snapshot() *Snapshot {
	reply := make(chan *Snapshot, 1)
	select {
	case s.inbox <- GetSnapshot{Reply: reply}:
		select {
		case snap := <-reply:
			return snap
		case <-s.ctx.Done():
			return s.snap.Load()
		}
	case <-s.ctx.Done():
		return s.snap.Load()
	}
}

// Watch reloads the pool whenever one of the given files is rewritten.
func (s *Store) Watch(paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := watcher.Add(p); err != nil {
			_ = watcher.Close()
			return err
		}
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-s.ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					s.inbox <- sourceChanged{name: ev.Name}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("pool watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (s *Store) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case GetSnapshot:
				msg.Reply <- s.snap.Load()

			case Reload:
				err := s.reload("requested")
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case sourceChanged:
				_ = s.reload(msg.name)

			case Shutdown:
				s.cancel()
				return
			}
		}
	}
}

func (s *Store) reload(trigger string) error {
	snap, err := s.source()
	if err != nil {
		s.log.Error("pool reload failed, keeping active version",
			zap.String("trigger", trigger),
			zap.String("active_version", s.snap.Load().Version),
			zap.Error(err))
		return err
	}
	s.log.Info("pool reloaded",
		zap.String("trigger", trigger),
		zap.String("version", snap.Version),
		zap.Int("heroes", len(snap.Profiles)))
	s.snap.Store(snap)
	return nil
}
