package handlers

import (
	"strconv"
	"strings"
)

const maxHistoryLimit = 365

// parseLimit reads a positive limit, falling back to defaultLimit and
// clamping to maxLimit when maxLimit > 0.
func parseLimit(rawLimit string, defaultLimit int, maxLimit int) int {
	limit := defaultLimit
	if parsedLimit, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && parsedLimit > 0 {
		limit = parsedLimit
	}
	if limit <= 0 {
		limit = maxLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
