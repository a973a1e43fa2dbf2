package service

// checkColumnCapacity enforces a column's WIP limit. The gate only blocks net
// increases to occupancy: an issue already resident in the column may be
// reordered freely even when the column is at or over its limit. A nil limit
// means the column is unbounded.
func checkColumnCapacity(limit *int, occupancy int, alreadyResident bool) error {
	if limit == nil || alreadyResident {
		return nil
	}
	if occupancy >= *limit {
		return ErrColumnFull
	}
	return nil
}
