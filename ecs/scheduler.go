package ecs

import "time"

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// Scheduler runs systems in registration order. With profiling on it keeps
// the duration of each system's last update.
type Scheduler struct {
	systems []System
	timings []time.Duration
	profile bool
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
	s.timings = append(s.timings, 0)
}

func (s *Scheduler) SetProfiling(on bool) {
	s.profile = on
	if !on {
		clear(s.timings)
	}
}

func (s *Scheduler) Update(w *World) {
	if w == nil {
		return
	}
	for i, system := range s.systems {
		if !s.profile {
			system.Update(w)
			continue
		}
		start := time.Now()
		system.Update(w)
		s.timings[i] = time.Since(start)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

// Timings returns the last update duration of each system, in order. All
// zero unless profiling is on.
func (s *Scheduler) Timings() []time.Duration {
	return append([]time.Duration(nil), s.timings...)
}

// Total is the sum of Timings.
func (s *Scheduler) Total() time.Duration {
	var total time.Duration
	for _, d := range s.timings {
		total += d
	}
	return total
}
