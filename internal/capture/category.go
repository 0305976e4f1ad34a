package capture

import (
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
)

// Category classifies a value as user data or as one of the opaque kinds
// that never make it into a dump.
type Category int

const (
	CategoryData Category = iota
	CategoryFunc
	CategoryMethod
	CategoryType
	CategoryModule
)

func (c Category) String() string {
	switch c {
	case CategoryData:
		return "data"
	case CategoryFunc:
		return "func"
	case CategoryMethod:
		return "method"
	case CategoryType:
		return "type"
	case CategoryModule:
		return "module"
	default:
		return "unknown"
	}
}

// Classify returns the category of v.
func Classify(v any) Category {
	switch v.(type) {
	case nil:
		return CategoryData
	case reflect.Type:
		return CategoryType
	case debug.Module, *debug.Module, *debug.BuildInfo:
		return CategoryModule
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return CategoryData
	}
	if rv.IsNil() {
		return CategoryFunc
	}
	// Method values are compiled into wrappers whose symbol ends in "-fm".
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil && strings.HasSuffix(fn.Name(), "-fm") {
		return CategoryMethod
	}
	return CategoryFunc
}

// IsOpaque reports whether v belongs to a non-data category.
func IsOpaque(v any) bool {
	return Classify(v) != CategoryData
}

