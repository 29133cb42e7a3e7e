package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	ErrDuplicate  = errors.New("service already registered")
	ErrMissingDep = errors.New("dependency not registered")
	ErrCycle      = errors.New("circular service dependency")
)

// Hub owns the registered services and walks them through
// Init, Start and Stop with dependencies first
type Hub struct {
	mu      sync.Mutex
	byName  map[string]Service
	order   []string  // resolved on InitAll, reset by Register
	running []Service // started services, stopped newest first
}

func NewHub() *Hub {
	return &Hub{byName: make(map[string]Service)}
}

// Register adds svc; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	name := svc.Name()
	if _, dup := h.byName[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.byName[name] = svc
	h.order = nil
	return nil
}

func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.byName[name]
	return svc, ok
}

// MustGet returns the named service as T, panicking when it is absent or of another type
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll resolves the order and passes args to every Init
// A failure stops the services already initialized
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.order == nil {
		order, err := h.resolve()
		if err != nil {
			return err
		}
		h.order = order
	}
	_, err := h.each("init", func(s Service) error { return s.Init(args...) })
	return err
}

// StartAll starts services in order; a failure stops those already started
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	started, err := h.each("start", Service.Start)
	h.running = started
	return err
}

// StopAll stops running services newest first and joins their errors
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, svc := range slices.Backward(h.running) {
		if err := svc.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("service %s stop: %w", svc.Name(), err))
		}
	}
	h.running = nil
	return errors.Join(errs...)
}

// each applies fn along the resolved order
// On error it unwinds the completed services and returns none
func (h *Hub) each(phase string, fn func(Service) error) ([]Service, error) {
	done := make([]Service, 0, len(h.order))
	for _, name := range h.order {
		svc := h.byName[name]
		if err := fn(svc); err != nil {
			for _, prev := range slices.Backward(done) {
				prev.Stop()
			}
			return nil, fmt.Errorf("service %s %s failed: %w", name, phase, err)
		}
		done = append(done, svc)
	}
	return done, nil
}

// Order reports the dependency order without caching it
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolve()
}

// resolve is a depth-first topological sort; siblings are visited by name
func (h *Hub) resolve() ([]string, error) {
	const (
		unseen = iota
		visiting
		visited
	)
	state := make(map[string]int, len(h.byName))
	order := make([]string, 0, len(h.byName))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(path, " -> "), name)
		}
		state[name] = visiting
		path = append(path, name)
		deps := slices.Sorted(slices.Values(h.byName[name].Dependencies()))
		for _, dep := range deps {
			if _, ok := h.byName[dep]; !ok {
				return fmt.Errorf("%w: %s needs %s", ErrMissingDep, name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = visited
		order = append(order, name)
		return nil
	}

	for _, name := range h.names() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (h *Hub) names() []string {
	names := make([]string, 0, len(h.byName))
	for name := range h.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Names lists registered services alphabetically
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.names()
}
