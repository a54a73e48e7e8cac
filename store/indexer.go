package store

// IndexEntity returns a copy of e with all derived index-key attributes
// recomputed. IndexOU is always stamped; each classifier index key is
// stamped when its source field is non-empty and cleared when it is not, so
// the stored item never carries a key for an absent classifier. The suffix,
// when non-zero, is appended to every computed key.
//
// The caller's entity is not mutated. Calling IndexEntity twice with the
// same entity state and suffix yields identical keys.
func IndexEntity(e Entity, suffix Suffix) Entity {
	sfx := suffix.String()

	out := e
	out.IndexOU = BuildIndexOU(e.OU, e.Model) + sfx
	for _, c := range classifiers {
		if v := c.value(&e); v != "" {
			c.assign(&out, c.build(e.OU, e.Model, v)+sfx)
		} else {
			c.assign(&out, "")
		}
	}
	return out
}
