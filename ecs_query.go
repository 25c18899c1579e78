package armviz

import (
	"reflect"
)

type Query1[A any] struct {
	ecs     *Ecs
	without []any
}
type Query2[A, B any] struct {
	ecs     *Ecs
	without []any
}
type Query3[A, B, C any] struct {
	ecs     *Ecs
	without []any
}

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

// Without skips archetypes that contain any of the given component types.
func (q Query1[A]) Without(components ...any) Query1[A] {
	q.without = append(q.without, components...)
	return q
}

func (q Query2[A, B]) Without(components ...any) Query2[A, B] {
	q.without = append(q.without, components...)
	return q
}

func (q Query3[A, B, C]) Without(components ...any) Query3[A, B, C] {
	q.without = append(q.without, components...)
	return q
}

// column resolves the typed slice of T in arch. Optional components that are
// missing yield a nil slice with ok=true.
func column[T any](arch *archetype, id componentId, opt set[componentId]) ([]T, bool) {
	if data, ok := arch.componentData[id]; ok {
		return data.([]T), true
	}
	if _, ok := opt[id]; ok {
		return nil, true
	}
	return nil, false
}

func at[T any](comps []T, r row) *T {
	if comps == nil {
		return nil
	}
	return &comps[r]
}

// Map calls m for every matching entity until m returns false. Components
// listed in optionals may be absent, in which case m receives nil.
func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	excl := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, excl) {
			continue
		}
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	excl := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, excl) {
			continue
		}
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, r), at(comps2, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	excl := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, excl) {
			continue
		}
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		comps3, ok := column[C](arch, id3, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, r), at(comps2, r), at(comps3, r)) {
				return
			}
		}
	}
}

// Get returns the component of a single entity.
func (q Query1[A]) Get(eid EntityId) (*A, bool) {
	archId, ok := q.ecs.entityIndex[eid]
	if !ok {
		return nil, false
	}
	arch := q.ecs.archetypes[archId]
	comps, ok := column[A](arch, identifyComponent[A](q.ecs), nil)
	if !ok {
		return nil, false
	}
	return &comps[arch.entities[eid]], true
}

func excluded(arch *archetype, excl set[componentId]) bool {
	for id := range excl {
		if _, ok := arch.componentData[id]; ok {
			return true
		}
	}
	return false
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}
