package ecs

import "fmt"

// Entity is a generational actor handle: slot in the low word, generation in
// the high word. Slot 0 is never issued.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

const (
	slotMask = 1<<32 - 1
	genShift = 32
)

func makeEntity(id entityID, gen generation) Entity {
	return Entity(gen)<<genShift | Entity(id)
}

func (e Entity) id() entityID {
	return entityID(e & slotMask)
}

func (e Entity) generation() generation {
	return generation(e >> genShift)
}

func (e Entity) Valid() bool {
	return e.id() != 0
}

// String renders the handle as "actor#slot" with a ".gen" suffix once the
// slot has been recycled.
func (e Entity) String() string {
	if g := e.generation(); g != 0 {
		return fmt.Sprintf("actor#%d.%d", e.id(), g)
	}
	return fmt.Sprintf("actor#%d", e.id())
}
