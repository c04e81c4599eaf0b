package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("0815-079S", "-", 1)
	assert.NoError(t, err)
	assert.Equal(t, "079S", part)

	_, err = GetSplitPart("0815", "-", 2)
	assert.Error(t, err)
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "EVER BUILD", CollapseSpaces("  EVER  \tBUILD \n"))
	assert.Nil(t, StringPtr(" - "))
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "BERTHED", *StringPtr(" BERTHED "))
	assert.True(t, ContainsFold("Wan Hai 517", "HAI 5"))
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
