package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestResolveExpression_PassThrough(t *testing.T) {
	got, err := ResolveExpression("logs-1", fixedClock(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "logs-1", got)
}

func TestResolveExpression_DefaultFormat(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	got, err := ResolveExpression("<logs-{now/d}>", clock)
	require.NoError(t, err)
	assert.Equal(t, "logs-2024.01.15", got)
}

func TestResolveExpression_CustomFormatAndTZ(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	got, err := ResolveExpression("<logs-{now/d{yyyy.MM.dd|UTC}}>", clock)
	require.NoError(t, err)
	assert.Equal(t, "logs-2024.01.15", got)
}

func TestResolveExpression_MathAddSubtract(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	got, err := ResolveExpression("<logs-{now-1d{yyyy.MM.dd}}>", clock)
	require.NoError(t, err)
	assert.Equal(t, "logs-2024.01.14", got)
}

func TestResolveExpression_Escapes(t *testing.T) {
	clock := fixedClock(time.Now())
	got, err := ResolveExpression(`<logs-\{literal\}>`, clock)
	require.NoError(t, err)
	assert.Equal(t, "logs-{literal}", got)
}

func TestResolveExpression_Errors(t *testing.T) {
	clock := fixedClock(time.Now())

	_, err := ResolveExpression("<logs-{now/d", clock)
	assert.Error(t, err, "missing closing '>'")

	_, err = ResolveExpression("<>", clock)
	assert.Error(t, err, "empty output")

	_, err = ResolveExpression("<logs-}>", clock)
	assert.Error(t, err, "stray '}'")
}

func TestResolveExpression_Idempotent(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC))
	first, err := ResolveExpression("<logs-{now/d}>", clock)
	require.NoError(t, err)
	second, err := ResolveExpression(first, clock)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveExpressions_ExclusionMarkerPreservedOnlyAfterWildcard(t *testing.T) {
	clock := fixedClock(time.Now())

	got, err := ResolveExpressions([]string{"-foo"}, clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"-foo"}, got, "no prior wildcard: dash is part of a literal name")

	got, err = ResolveExpressions([]string{"logs-*", "-foo"}, clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-*", "-foo"}, got, "prior wildcard: dash is an exclusion marker")
}
