package store

// NextID returns an identifier not yet used as a key in ds.
//
// Probing starts at the record count and walks upward, so the result is
// collision-free but not minimal: ids freed by deletes below that point are
// not reused.
func NextID(ds Dataset) int {
	id := len(ds)
	for {
		if _, ok := ds[idKey(id)]; !ok {
			return id
		}
		id++
	}
}
