package helpers

import (
	"context"
	"errors"
	"strings"
	"time"
)

// GetSplitPart returns the index-th piece of target split on separate
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index < 0 || index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// CollapseSpaces trims s and folds every whitespace run, including NBSP, to one space.
func CollapseSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// StringPtr returns nil for a blank string, otherwise a pointer to the trimmed value.
func StringPtr(s string) *string {
	s = CollapseSpaces(s)
	if s == "" || s == "-" {
		return nil
	}
	return &s
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
