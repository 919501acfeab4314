package expressions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELEngine_CheckAndEvaluate(t *testing.T) {
	e, err := NewCELEngine()
	require.NoError(t, err)

	assert.NoError(t, e.Check(`inputs.amount > 100`))
	assert.Error(t, e.Check(`inputs.amount >`))
	assert.Error(t, e.Check(""))

	out, err := e.Evaluate(context.Background(), `inputs.amount > 100`,
		map[string]any{"inputs": map[string]any{"amount": 250}})
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestCELEngine_MissingKeysDefaultToEmpty(t *testing.T) {
	e, err := NewCELEngine()
	require.NoError(t, err)

	out, err := e.Evaluate(context.Background(), `has(steps.first)`, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestExprEngine_CheckAndEvaluate(t *testing.T) {
	e := NewExprEngine()

	assert.NoError(t, e.Check(`amount * 1.19`))
	assert.Error(t, e.Check(`amount *`))
	assert.Error(t, e.Check(""))

	out, err := e.Evaluate(context.Background(), `amount * 2`,
		map[string]any{"amount": 21})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestGoJQEngine_CheckAndEvaluate(t *testing.T) {
	e := NewGoJQEngine()

	assert.NoError(t, e.Check(`.items | length`))
	assert.Error(t, e.Check(`.items |`))
	assert.Error(t, e.Check(""))

	out, err := e.Evaluate(context.Background(), `.items | length`,
		map[string]any{"items": []any{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestGoJQEngine_MultipleOutputs(t *testing.T) {
	e := NewGoJQEngine()

	out, err := e.Evaluate(context.Background(), `.items[]`,
		map[string]any{"items": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, out)
}

func TestRegistry_ChecksDispatchToEngines(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.NoError(t, reg.CheckCondition(`inputs.ok == true`))
	assert.NoError(t, reg.CheckCompute(`a + b`))
	assert.NoError(t, reg.CheckTransform(`.payload`))

	assert.Error(t, reg.CheckCondition(`inputs.ok ==`))
	assert.Error(t, reg.CheckCompute(`a +`))
	assert.Error(t, reg.CheckTransform(`.payload[`))
}

func TestEngine_CompileCacheReuse(t *testing.T) {
	e := NewExprEngine()
	require.NoError(t, e.Check(`x + 1`))
	require.Len(t, e.cache, 1)

	// Second check hits the cache, no new entry.
	require.NoError(t, e.Check(`x + 1`))
	assert.Len(t, e.cache, 1)
}
