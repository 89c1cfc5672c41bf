// Copyright 2024 go-dataspace
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package view runs the outbound calls belonging to a single view of a bitstream.
//
// A Scope lives as long as the view. Operations are keyed, and a key can only be in flight once.
// Results that arrive after the scope has been closed are dropped.
package view

import (
	"context"
	"slices"
	"sync"

	"github.com/gammazero/deque"
	"github.com/go-dataspace/run-access/logging"
)

const initialPending = 4

type pendingOp struct {
	key    string
	cancel context.CancelFunc
}

// Scope tracks the in-flight operations of a view.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	q      *deque.Deque[pendingOp]
	closed bool
	wg     sync.WaitGroup
	sync.Mutex
}

// New creates a scope bound to ctx, cancelling ctx closes the scope's operations but not the
// scope itself.
func New(ctx context.Context) *Scope {
	ctx, cancel := context.WithCancel(ctx)
	q := &deque.Deque[pendingOp]{}
	q.Grow(initialPending)
	return &Scope{
		ctx:    ctx,
		cancel: cancel,
		q:      q,
	}
}

// Go starts fn under key and hands its result to done, unless the scope got closed in the
// meantime. It returns false if the key is already in flight or the scope is closed.
func Go[T any](s *Scope, key string, fn func(context.Context) (T, error), done func(T, error)) bool {
	s.Lock()
	if closed := s.closed; closed || s.indexOf(key) >= 0 {
		s.Unlock()
		logging.Extract(s.ctx).Debug("Refusing operation", "key", key, "closed", closed)
		return false
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.q.PushBack(pendingOp{key: key, cancel: cancel})
	s.wg.Add(1)
	s.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		res, err := fn(ctx)

		s.Lock()
		if i := s.indexOf(key); i >= 0 {
			s.q.Remove(i)
		}
		closed := s.closed
		s.Unlock()

		if closed {
			logging.Extract(s.ctx).Debug("Discarding result of closed view", "key", key)
			return
		}
		done(res, err)
	}()
	return true
}

// must be called with the lock held.
func (s *Scope) indexOf(key string) int {
	return s.q.Index(func(op pendingOp) bool {
		return op.key == key
	})
}

// Pending returns the keys in flight, oldest first.
func (s *Scope) Pending() []string {
	s.Lock()
	defer s.Unlock()
	keys := make([]string, 0, s.q.Len())
	for i := range s.q.Len() {
		keys = append(keys, s.q.At(i).key)
	}
	return slices.Clip(keys)
}

// Wait blocks until every started operation has returned.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Close cancels all pending operations. Their results will not be delivered.
func (s *Scope) Close() {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for s.q.Len() > 0 {
		op := s.q.PopFront()
		op.cancel()
	}
	s.cancel()
}
