package digestcodec

import (
	"maps"
	"slices"
)

// WriteSortedNonZeroIntMap emits a key-sorted map encoding, skipping zero values.
func WriteSortedNonZeroIntMap[K string | int](w Writer, tmp *[8]byte, m map[K]int) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		if v == 0 {
			continue
		}
		writeKey(w, tmp, k)
		WriteInt(w, tmp, v)
	}
}

func writeKey[K string | int](w Writer, tmp *[8]byte, k K) {
	switch v := any(k).(type) {
	case string:
		WriteString(w, tmp, v)
	case int:
		WriteInt(w, tmp, v)
	}
}
