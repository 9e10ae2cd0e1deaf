package model

// Intersects reports whether a and b share at least one tag.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Contains reports whether tags holds t.
func Contains(tags []string, t string) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

// ValidTags applies the valid/invalid rule used by weapons and warheads:
// the tag set must meet valid and must not meet invalid. Invalid overrules valid.
func ValidTags(tags, valid, invalid []string) bool {
	return Intersects(valid, tags) && !Intersects(invalid, tags)
}
