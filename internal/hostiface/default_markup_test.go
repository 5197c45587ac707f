package hostiface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMarkupParserBasicElement(t *testing.T) {
	root, err := NewDefaultMarkupParser().Parse(`<div Foo.bind="bar"><span>hi</span></div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	div := root.Children[0]
	assert.Equal(t, "div", div.Tag)
	require.Len(t, div.Attrs, 1)
	assert.Equal(t, "Foo.bind", div.Attrs[0].Name, "authored case must be preserved")
	assert.Equal(t, "bar", div.Attrs[0].Value)

	require.Len(t, div.Children, 1)
	span := div.Children[0]
	assert.Equal(t, "span", span.Tag)
	require.Len(t, span.Children, 1)
	assert.True(t, span.Children[0].IsText)
	assert.Equal(t, "hi", span.Children[0].Text)
}

func TestDefaultMarkupParserVoidElement(t *testing.T) {
	root, err := NewDefaultMarkupParser().Parse(`<input value.bind="x"><p>after</p>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "input", root.Children[0].Tag)
	assert.Empty(t, root.Children[0].Children)
	assert.Equal(t, "p", root.Children[1].Tag)
}

func TestDefaultMarkupParserSelfClosing(t *testing.T) {
	root, err := NewDefaultMarkupParser().Parse(`<my-element foo="bar" />`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "my-element", root.Children[0].Tag)
}

func TestDefaultMarkupParserComment(t *testing.T) {
	root, err := NewDefaultMarkupParser().Parse(`<!-- note --><div></div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.True(t, root.Children[0].IsComment)
	assert.Equal(t, " note ", root.Children[0].Text)
}
