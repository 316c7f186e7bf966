// Package strpool interns script text. Each distinct string is stored once
// and reference counted; holders release their association when done.
package strpool

import "sync"

type entry struct {
	text string
	refs int
}

// FixedString is a handle to interned text. The zero value is the empty
// string and carries no association.
type FixedString struct {
	e *entry
}

func (f FixedString) String() string {
	if f.e == nil {
		return ""
	}
	return f.e.text
}

func (f FixedString) IsEmpty() bool { return f.e == nil }

type Pool struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Pool {
	return &Pool{entries: make(map[string]*entry)}
}

// Intern returns the handle for s and adds one association to it.
func (p *Pool) Intern(s string) FixedString {
	if s == "" {
		return FixedString{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[s]
	if !ok {
		e = &entry{text: s}
		p.entries[s] = e
	}
	e.refs++
	return FixedString{e: e}
}

// Release drops one association. The text is forgotten once nothing holds it.
func (p *Pool) Release(f FixedString) {
	if f.e == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.e.refs > 0 {
		f.e.refs--
	}
	if f.e.refs == 0 && p.entries[f.e.text] == f.e {
		delete(p.entries, f.e.text)
	}
}

// Refs reports how many associations s currently has.
func (p *Pool) Refs(s string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[s]; ok {
		return e.refs
	}
	return 0
}

// Len reports the number of distinct strings held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
