package ecs

// entityStore tracks entity generations and free ids. Slot ids start at 1 so
// the zero Entity is never valid.
type entityStore struct {
	gen  []generation
	free []entityID
	live int
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		id = entityID(len(s.gen))
	}
	s.live++
	return makeEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gen[id-1]++
	s.free = append(s.free, id)
	s.live--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if s == nil || id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == e.generation()
}
