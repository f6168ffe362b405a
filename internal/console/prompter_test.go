package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptedPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func TestAskPriceRetriesUntilValid(t *testing.T) {
	p, out := newScriptedPrompter("abc\n-3\n$7.25\n")

	price, err := p.AskPrice("Enter price: $", "$")
	require.NoError(t, err)
	assert.Equal(t, 7.25, price)
	assert.Contains(t, out.String(), "please enter a valid number")
	assert.Contains(t, out.String(), "price must be positive")
	assert.Contains(t, out.String(), "Enter price: $")
}

func TestAskPriceUsesMenuCurrency(t *testing.T) {
	p, out := newScriptedPrompter("€12.5\n")

	price, err := p.AskPrice("Enter price: €", "€")
	require.NoError(t, err)
	assert.Equal(t, 12.5, price)
	assert.NotContains(t, out.String(), "please enter a valid number")

	_, err = parsePrice("$3", "€")
	assert.Error(t, err)
	v, err := parsePrice(" 3.10 ", "€")
	require.NoError(t, err)
	assert.Equal(t, 3.10, v)
}

func TestPromptsReadOneLineEach(t *testing.T) {
	p, _ := newScriptedPrompter("first\r\n  second  \r\n3\nlast")

	a, err := p.Ask("a: ")
	require.NoError(t, err)
	assert.Equal(t, "first", a)

	b, err := p.AskRaw("b: ")
	require.NoError(t, err)
	assert.Equal(t, "  second  ", b)

	n, err := p.Select("n: ", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	last, err := p.Ask("last: ")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = p.Ask("more: ")
	assert.ErrorIs(t, err, ErrInputClosed)
	_, err = p.Confirm("again: ")
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestSelectAndPositions(t *testing.T) {
	p, out := newScriptedPrompter("x\n9\n2\n1, 3,7\n")

	n, err := p.Select("pick: ", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), "please enter a number")
	assert.Contains(t, out.String(), "invalid choice, please try again")

	positions, err := p.AskPositions("tags: ", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, positions)
}

func TestLineSourceSplitsCRLFAcrossReads(t *testing.T) {
	src := &lineSource{r: io.MultiReader(strings.NewReader("one\r"), strings.NewReader("\ntwo\n"))}

	chunk, eol, err := src.next(64)
	require.NoError(t, err)
	assert.True(t, eol)
	assert.Equal(t, "one\r", string(chunk))

	chunk, eol, err = src.next(64)
	require.NoError(t, err)
	assert.True(t, eol)
	assert.Equal(t, "two\n", string(chunk))

	_, _, err = src.next(64)
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, src.exhausted())
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel("Name: ", newStyles(io.Discard))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Tea")})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	final := next.(promptModel)
	assert.True(t, final.done)
	assert.Equal(t, "Tea", final.answer)
	assert.Equal(t, "Name: Tea\n", final.View())

	closed, _ := newPromptModel("Name: ", newStyles(io.Discard)).Update(inputClosedMsg{})
	assert.True(t, closed.(promptModel).closed)

	partial, _ := newPromptModel("Name: ", newStyles(io.Discard)).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Pie")})
	partial, _ = partial.Update(inputClosedMsg{})
	assert.False(t, partial.(promptModel).closed)
	assert.Equal(t, "Pie", partial.(promptModel).answer)
}
