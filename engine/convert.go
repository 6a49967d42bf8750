package engine

import (
	"strconv"
	"strings"

	"github.com/risor-io/risor/object"
)

// stringify converts one script value to its textual representation.
// Strings pass through verbatim and numbers are formatted; every other type
// (bool, list, map, function, nil, ...) is a TypeError naming the type, the
// same rule the engine's own string concatenation applies.
func stringify(obj object.Object) (string, error) {
	switch o := obj.(type) {
	case *object.String:
		return o.Value(), nil
	case *object.Int:
		return strconv.FormatInt(o.Value(), 10), nil
	case *object.Float:
		return strconv.FormatFloat(o.Value(), 'g', -1, 64), nil
	default:
		return "", &TypeError{Type: string(obj.Type())}
	}
}

// stringifyArgs concatenates all arguments in order with no separator.
func stringifyArgs(args []object.Object) (string, error) {
	var sb strings.Builder
	for _, arg := range args {
		text, err := stringify(arg)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
