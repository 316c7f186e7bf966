// Package objstore keeps native objects behind integer handles that
// scripts can pass around, and persists them through the co-save.
package objstore

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
)

// Handle identifies a stored object. NoHandle never refers to anything.
type Handle int32

const NoHandle Handle = 0

const (
	// RecordType tags one stored object in the co-save.
	RecordType    = 0x534F424A // "SOBJ"
	RecordVersion = 1
)

var (
	ErrUnknownClass  = errors.New("objstore: unknown class")
	ErrRecordVersion = errors.New("objstore: unsupported record version")
	ErrBadHandle     = errors.New("objstore: invalid handle")
)

// releaser is implemented by objects that hold associations they must drop
// when destroyed.
type releaser interface {
	Release()
}

type Store struct {
	mu      sync.RWMutex
	objects map[Handle]Object
	next    Handle
	logger  *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		objects: make(map[Handle]Object),
		next:    1,
		logger:  logger,
	}
}

// Store keeps obj and returns its handle. A nil object gets NoHandle.
func (s *Store) Store(obj Object) Handle {
	if obj == nil {
		return NoHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.allocate()
	s.objects[h] = obj
	return h
}

// allocate finds the next free handle, wrapping past the int32 range and
// skipping NoHandle.
func (s *Store) allocate() Handle {
	for {
		h := s.next
		if s.next == math.MaxInt32 {
			s.next = 1
		} else {
			s.next++
		}
		if h == NoHandle {
			continue
		}
		if _, used := s.objects[h]; !used {
			return h
		}
	}
}

// Access returns the object for h without giving up ownership.
func (s *Store) Access(h Handle) Object {
	if h == NoHandle {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[h]
}

// Take removes the object for h and hands ownership to the caller.
func (s *Store) Take(h Handle) Object {
	if h == NoHandle {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.objects[h]
	delete(s.objects, h)
	return obj
}

// Delete removes and destroys the object for h.
func (s *Store) Delete(h Handle) bool {
	obj := s.Take(h)
	if obj == nil {
		return false
	}
	release(obj)
	return true
}

// Clear destroys every stored object.
func (s *Store) Clear() {
	s.mu.Lock()
	objects := s.objects
	s.objects = make(map[Handle]Object)
	s.next = 1
	s.mu.Unlock()

	for _, obj := range objects {
		release(obj)
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func release(obj Object) {
	if r, ok := obj.(releaser); ok {
		r.Release()
	}
}

// Access returns the object for h if it is a T.
func Access[T Object](s *Store, h Handle) (T, bool) {
	obj, ok := s.Access(h).(T)
	return obj, ok
}

// Take removes the object for h if it is a T. Objects of another type stay
// in the store.
func Take[T Object](s *Store, h Handle) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[h].(T)
	if ok {
		delete(s.objects, h)
	}
	return obj, ok
}

func (s *Store) handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := maps.Keys(s.objects)
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Save writes one record per object in ascending handle order:
// handle i32 | class string | class version u32 | object data.
func (s *Store) Save(enc cosave.RecordEncoder) error {
	for _, h := range s.handles() {
		obj := s.Access(h)
		if obj == nil {
			continue
		}
		if err := enc.OpenRecord(RecordType, RecordVersion); err != nil {
			return err
		}
		if err := enc.WriteI32(int32(h)); err != nil {
			return fmt.Errorf("objstore: failed to save handle %d: %w", h, err)
		}
		if err := enc.WriteString(obj.ClassName()); err != nil {
			return fmt.Errorf("objstore: failed to save class of handle %d: %w", h, err)
		}
		if err := enc.WriteU32(obj.ClassVersion()); err != nil {
			return fmt.Errorf("objstore: failed to save class version of handle %d: %w", h, err)
		}
		if err := obj.Save(enc); err != nil {
			return fmt.Errorf("objstore: failed to save %s (handle %d): %w", obj.ClassName(), h, err)
		}
	}
	return nil
}

// Load replaces the store's contents with the objects recorded in dec.
// Objects that cannot be rebuilt are skipped; their errors are combined
// into the returned error.
func (s *Store) Load(dec cosave.RecordDecoder, classes *Registry) error {
	s.Clear()

	var errs error
	loaded := 0
	for {
		info, ok := dec.NextRecord()
		if !ok {
			break
		}
		if info.Type != RecordType {
			continue
		}
		if info.Version != RecordVersion {
			errs = multierr.Append(errs, fmt.Errorf("%w: got %d, expected %d", ErrRecordVersion, info.Version, RecordVersion))
			continue
		}

		h, obj, err := s.loadObject(dec, classes)
		if err != nil {
			s.logger.Warn("skipping stored object", zap.Int32("handle", int32(h)), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}

		s.mu.Lock()
		s.objects[h] = obj
		if h >= s.next && h < math.MaxInt32 {
			s.next = h + 1
		}
		s.mu.Unlock()
		loaded++
	}

	s.logger.Debug("object store loaded", zap.Int("objects", loaded))
	return errs
}

func (s *Store) loadObject(dec cosave.RecordDecoder, classes *Registry) (Handle, Object, error) {
	raw, err := dec.ReadI32()
	if err != nil {
		return NoHandle, nil, fmt.Errorf("objstore: failed to load handle: %w", err)
	}
	h := Handle(raw)
	if h <= NoHandle {
		return h, nil, fmt.Errorf("%w: %d", ErrBadHandle, raw)
	}

	s.mu.RLock()
	_, dup := s.objects[h]
	s.mu.RUnlock()
	if dup {
		return h, nil, fmt.Errorf("%w: %d stored twice", ErrBadHandle, raw)
	}

	class, err := dec.ReadString()
	if err != nil {
		return h, nil, fmt.Errorf("objstore: failed to load class of handle %d: %w", h, err)
	}
	version, err := dec.ReadU32()
	if err != nil {
		return h, nil, fmt.Errorf("objstore: failed to load class version of handle %d: %w", h, err)
	}

	obj, ok := classes.Create(class)
	if !ok {
		return h, nil, fmt.Errorf("%w: %s (handle %d)", ErrUnknownClass, class, h)
	}
	if err := obj.Load(dec, version); err != nil {
		release(obj)
		return h, nil, fmt.Errorf("objstore: failed to load %s (handle %d): %w", class, h, err)
	}
	return h, obj, nil
}
