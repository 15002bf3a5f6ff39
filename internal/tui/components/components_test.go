package components

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vidfeed/internal/domain"
)

func videos(n int) []domain.Video {
	out := make([]domain.Video, n)
	for i := range out {
		out[i] = domain.Video{ID: fmt.Sprintf("v%d", i), Title: fmt.Sprintf("Video %d", i)}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestList_GrowingItemsKeepCursor(t *testing.T) {
	l := NewList[domain.Video](nil)
	l.SetSize(80, 5)
	l.SetItems(videos(10))

	for i := 0; i < 7; i++ {
		l.Update(runes("j"))
	}
	require.Equal(t, 7, l.Cursor())

	l.SetItems(videos(20))
	assert.Equal(t, 7, l.Cursor())
	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "v7", sel.ID)
}

func TestList_Viewport(t *testing.T) {
	l := NewList[domain.Video](nil)
	l.SetSize(80, 5)
	l.SetItems(videos(12))

	top, height, content := l.Viewport()
	assert.Equal(t, 0, top)
	assert.Equal(t, 5, height)
	assert.Equal(t, 12, content)

	l.Update(runes("G"))
	top, _, _ = l.Viewport()
	assert.Equal(t, 7, top, "last row at the bottom of the viewport")
}

func TestList_Filter(t *testing.T) {
	l := NewList[domain.Video](nil)
	l.SetSize(80, 10)
	items := videos(3)
	items[1].Title = "Gopher conference"
	l.SetItems(items)

	l.ToggleFilter()
	require.True(t, l.IsFilterTyping())
	l.Update(runes("gopher"))

	assert.Equal(t, 1, l.Count())
	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "v1", sel.ID)

	l.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, l.IsFiltering())
	assert.False(t, l.IsFilterTyping())

	l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, l.IsFiltering())
	assert.Equal(t, 3, l.Count())
}

func TestList_EmptyIgnoresNavigation(t *testing.T) {
	l := NewList[domain.Video](nil)
	l.Update(runes("j"))
	assert.Equal(t, 0, l.Cursor())
	_, ok := l.Selected()
	assert.False(t, ok)
}

func TestList_BadgeRendered(t *testing.T) {
	l := NewList(func(v domain.Video) string {
		if v.ID == "v0" {
			return "*"
		}
		return ""
	})
	l.SetSize(80, 5)
	l.SetItems(videos(2))
	view := l.View()
	assert.Contains(t, view, "*")
	assert.Contains(t, view, "Video 1")
}

func TestCarousel(t *testing.T) {
	c := NewCarousel[domain.Video]()
	c.SetSize(80, 20)
	assert.Equal(t, "", c.View())

	c.SetItems(videos(3))
	c.Update(runes("l"))
	c.Update(runes("l"))
	c.Update(runes("l"))
	assert.Equal(t, 2, c.Index(), "stops at the last loaded item")

	c.SetItems(videos(6))
	assert.Equal(t, 2, c.Index())
	assert.Contains(t, c.View(), "3 / 6")

	c.Update(runes("h"))
	assert.Equal(t, 1, c.Index())
	c.Reset()
	assert.Equal(t, 0, c.Index())
}

func TestRenderPageBar(t *testing.T) {
	bar := RenderPageBar(1, true, false)
	assert.Contains(t, bar, "Page 2")
	assert.Contains(t, bar, "Previous")
	assert.Contains(t, bar, "Next")
}
