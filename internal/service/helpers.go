package service

import (
	"strings"

	"clothingstore/pkg/apperror"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func parseID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperror.InvalidInput("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.InvalidInput("%s is not a valid id", field)
	}
	return id, nil
}

// parseOptionalID returns nil for an empty value.
func parseOptionalID(raw, field string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseActor reads the acting user id set by the auth middleware.
func parseActor(userID string) (*uuid.UUID, error) {
	return parseOptionalID(userID, "user id")
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
