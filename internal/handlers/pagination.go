package handlers

import (
	"errors"
	"strconv"
)

// parsePaginationParams reads page/limit pairs for page-numbered listings.
func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errors.New("invalid page")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = l
	}

	return page, limit, nil
}

// parseLimitSkip reads limit/skip bounds for cursor-style listings. Both are
// optional; skip may be zero.
func parseLimitSkip(limitStr, skipStr string) (int64, int64, error) {
	limit := int64(20)
	skip := int64(0)

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = l
	}

	if skipStr != "" {
		s, err := strconv.ParseInt(skipStr, 10, 64)
		if err != nil || s < 0 {
			return 0, 0, errors.New("invalid skip")
		}
		skip = s
	}

	return limit, skip, nil
}
