package utils

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// CalculateOffset converts a zero-based page index into a row offset.
func CalculateOffset(page, perPage int) int {
	if page < 0 || perPage < 1 {
		return 0
	}
	return page * perPage
}
