package armviz

import (
	"reflect"
)

// Archetype columns are typed slices ([]T) held as any so queries can
// assert them back to []T. These helpers touch them through reflection.

func newColumn(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

// growColumn appends one zero value.
func growColumn(col any) any {
	v := reflect.ValueOf(col)
	return reflect.Append(v, reflect.Zero(v.Type().Elem())).Interface()
}

func columnCell(col any, r row) reflect.Value {
	return reflect.ValueOf(col).Index(int(r))
}

func setColumnCell(col any, r row, val reflect.Value) {
	columnCell(col, r).Set(val)
}
