package core

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"focus-hub/pkg/rest"
)

// Validate enforces Start < End.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return rest.Validation("startTime and endTime are required")
	}

	if !i.Start.Before(i.End) {
		return rest.Validation("end time must be after start time")
	}

	return nil
}

// validateItem runs on the merged item, after the payload tags passed.
func validateItem(item *ScheduledItem) error {
	item.Subject = strings.TrimSpace(item.Subject)

	length := utf8.RuneCountInString(item.Subject)
	if length == 0 {
		return rest.Validation("subject is required")
	}

	if length > 100 {
		return rest.Validation("subject is too long (100 characters tops)")
	}

	return item.Interval().Validate()
}

func validateId(id string) error {
	err := uuid.Validate(id)
	if err != nil {
		return rest.Validation("invalid id %q", id)
	}

	return nil
}
