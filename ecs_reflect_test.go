package armviz

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumn_Grow(t *testing.T) {
	type jointValue struct{ V float64 }
	col := newColumn(reflect.TypeOf(jointValue{}))
	assert.IsType(t, []jointValue{}, col)

	col = growColumn(growColumn(col))
	setColumnCell(col, 1, reflect.ValueOf(jointValue{V: 0.5}))
	assert.Equal(t, []jointValue{{}, {V: 0.5}}, col)
	assert.Equal(t, 0.5, columnCell(col, 1).Interface().(jointValue).V)
}

func TestColumn_Panics(t *testing.T) {
	col := []int{10, 20, 30}
	assert.Panics(t, func() { columnCell(col, 10) })
	assert.Panics(t, func() { setColumnCell(col, 0, reflect.ValueOf("wrong type")) })
}
