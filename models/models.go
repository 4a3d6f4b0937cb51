package models

import "reflect"

// ClearServerFields zeroes the fields the store assigns (ID, CreatedAt,
// UpdatedAt) on a client-supplied entity.
func ClearServerFields(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for _, name := range []string{"ID", "CreatedAt", "UpdatedAt"} {
		if f := rv.FieldByName(name); f.IsValid() && f.CanSet() {
			f.SetZero()
		}
	}
}
