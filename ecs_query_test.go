package armviz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type queryComp1 struct{ a int }
type queryComp2 struct{ b float32 }
type queryComp3 struct{}

func seedQueryEcs() (Ecs, EntityId, EntityId) {
	ecs := MakeEcs()
	ecs.addEntity(queryComp1{a: 1})
	id2 := ecs.addEntity(queryComp1{a: 2}, queryComp2{b: 1.37})
	id3 := ecs.addEntity(queryComp1{a: 3}, queryComp2{b: 4.20}, queryComp3{})
	ecs.addEntity(queryComp1{a: 4}, queryComp3{})
	ecs.addEntity(queryComp2{b: 3.14})
	return ecs, id2, id3
}

func TestQuery2_Map(t *testing.T) {
	ecs, id2, id3 := seedQueryEcs()

	got := map[EntityId]int{}
	Query2[queryComp1, queryComp2]{ecs: &ecs}.Map(func(eid EntityId, c1 *queryComp1, c2 *queryComp2) bool {
		got[eid] = c1.a
		assert.NotNil(t, c2)
		return true
	})

	assert.Equal(t, map[EntityId]int{id2: 2, id3: 3}, got)
}

func TestQuery2_Map_Optional(t *testing.T) {
	ecs, _, _ := seedQueryEcs()

	withB, withoutB := 0, 0
	Query2[queryComp1, queryComp2]{ecs: &ecs}.Map(func(eid EntityId, c1 *queryComp1, c2 *queryComp2) bool {
		if c2 == nil {
			withoutB++
		} else {
			withB++
		}
		return true
	}, queryComp2{})

	assert.Equal(t, 2, withB)
	assert.Equal(t, 2, withoutB)
}

func TestQuery_Without(t *testing.T) {
	ecs, id2, _ := seedQueryEcs()

	var got []EntityId
	Query2[queryComp1, queryComp2]{ecs: &ecs}.Without(queryComp3{}).Map(func(eid EntityId, _ *queryComp1, _ *queryComp2) bool {
		got = append(got, eid)
		return true
	})

	assert.Equal(t, []EntityId{id2}, got)
}

func TestQuery_MapStopsEarly(t *testing.T) {
	ecs, _, _ := seedQueryEcs()

	calls := 0
	Query1[queryComp1]{ecs: &ecs}.Map(func(EntityId, *queryComp1) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestQuery3_Map_WritesThrough(t *testing.T) {
	ecs, _, id3 := seedQueryEcs()

	Query3[queryComp1, queryComp2, queryComp3]{ecs: &ecs}.Map(func(eid EntityId, c1 *queryComp1, _ *queryComp2, _ *queryComp3) bool {
		c1.a = 42
		return true
	})

	got, ok := Query1[queryComp1]{ecs: &ecs}.Get(id3)
	assert.True(t, ok)
	assert.Equal(t, 42, got.a)
}
