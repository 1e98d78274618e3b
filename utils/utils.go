package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// GenerateTrackingID builds the public, immutable handle for a booking:
// TRK-<date>-<8 uppercase hex chars from a fresh uuid>.
func GenerateTrackingID() string {
	entropy := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TRK-%s-%s", time.Now().Format("20060102"), entropy)
}

// ParsePagination reads page/limit query params, falling back to 1/10 on
// absent or non-numeric values.
func ParsePagination(c *fiber.Ctx) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}

// CreateSanitizedLogEntry deep-copies request/response data so the log row is
// not backed by fiber's reused buffers.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

// sanitizeRequestBody redacts credential fields before the body is persisted.
func sanitizeRequestBody(c *fiber.Ctx) string {
	body := string(append([]byte(nil), c.Body()...))
	for _, field := range []string{"password", "old_password", "new_password"} {
		body = redactJSONField(body, field)
	}
	return body
}

func redactJSONField(body, field string) string {
	marker := `"` + field + `"`
	idx := strings.Index(body, marker)
	if idx == -1 {
		return body
	}

	rest := body[idx+len(marker):]
	colon := strings.Index(rest, ":")
	if colon == -1 {
		return body
	}
	valueStart := idx + len(marker) + colon + 1

	// Skip whitespace, then replace a quoted value.
	i := valueStart
	for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
		i++
	}
	if i >= len(body) || body[i] != '"' {
		return body
	}
	j := i + 1
	for j < len(body) && body[j] != '"' {
		if body[j] == '\\' {
			j++
		}
		j++
	}
	if j >= len(body) {
		return body
	}
	return body[:i] + `"[REDACTED]"` + redactJSONField(body[j+1:], field)
}
