package bounded

import "reflect"

func deepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// sizeOf approximates the in-memory footprint of one element for decode
// budgeting. It undercounts indirect storage, which the element's own
// DecodeScale tracks as it allocates.
func sizeOf(v any) int {
	t := reflect.TypeOf(v)
	if t == nil {
		return 0
	}
	return int(t.Size())
}
