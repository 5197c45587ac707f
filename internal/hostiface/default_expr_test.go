package hostiface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExpressionParserPlainExpr(t *testing.T) {
	p := NewDefaultExpressionParser()
	out, err := p.Parse("foo.bar")
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Empty(t, out.Pipes)
	assert.Empty(t, out.Behaviors)
}

func TestDefaultExpressionParserPipeAndBehavior(t *testing.T) {
	p := NewDefaultExpressionParser()
	out, err := p.Parse("value | upperCase & debounce:500")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Len(t, out.Pipes, 1)
	assert.Equal(t, "upperCase", out.Pipes[0].Name)
	require.Len(t, out.Behaviors, 1)
	assert.Equal(t, "debounce", out.Behaviors[0].Name)
}

func TestDefaultExpressionParserBooleanOperatorsAreNotPipes(t *testing.T) {
	p := NewDefaultExpressionParser()
	out, err := p.Parse("a && b || c")
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Empty(t, out.Pipes)
	assert.Empty(t, out.Behaviors)
}

func TestDefaultExpressionParserRecoversUnbalancedParen(t *testing.T) {
	p := NewDefaultExpressionParser()
	out, err := p.Parse("foo(bar")
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.NotEmpty(t, out.BadMsg)
}
