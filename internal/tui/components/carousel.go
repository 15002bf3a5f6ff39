package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/tui/styles"
)

// Carousel shows one item at a time with previous/next navigation
type Carousel[T domain.ListItem] struct {
	items  []T
	index  int
	width  int
	height int
}

// NewCarousel creates an empty carousel
func NewCarousel[T domain.ListItem]() *Carousel[T] {
	return &Carousel[T]{}
}

// SetItems replaces the backing items, keeping the position
func (c *Carousel[T]) SetItems(items []T) {
	c.items = items
	if c.index >= len(items) {
		c.index = len(items) - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}

// Reset returns to the first item
func (c *Carousel[T]) Reset() {
	c.index = 0
}

// Update moves between items
func (c *Carousel[T]) Update(msg tea.KeyMsg) {
	switch msg.String() {
	case "l", "right", "j", "down", " ":
		if c.index < len(c.items)-1 {
			c.index++
		}
	case "h", "left", "k", "up":
		if c.index > 0 {
			c.index--
		}
	case "g", "home":
		c.index = 0
	}
}

// Index returns the position of the current item
func (c *Carousel[T]) Index() int {
	return c.index
}

// Count returns the number of items
func (c *Carousel[T]) Count() int {
	return len(c.items)
}

// Selected returns the current item
func (c *Carousel[T]) Selected() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[c.index], true
}

func (c *Carousel[T]) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *Carousel[T]) View() string {
	item, ok := c.Selected()
	if !ok {
		return ""
	}

	cardWidth := c.width - 8
	if cardWidth > 60 {
		cardWidth = 60
	}
	if cardWidth < 10 {
		cardWidth = 10
	}

	body := strings.Join([]string{
		styles.TitleStyle.Render(styles.Truncate(item.GetTitle(), cardWidth-4)),
		styles.SubtitleStyle.Render(styles.Truncate(item.GetDescription(), cardWidth-4)),
	}, "\n")
	card := styles.CardStyle.Width(cardWidth).Render(body)

	prev := styles.DimStyle.Render("◀ h")
	if c.index > 0 {
		prev = styles.AccentStyle.Render("◀ h")
	}
	next := styles.AccentStyle.Render("l ▶")
	position := styles.DimStyle.Render(fmt.Sprintf("%d / %d", c.index+1, len(c.items)))

	nav := lipgloss.JoinHorizontal(lipgloss.Center, prev, "   ", position, "   ", next)
	return lipgloss.JoinVertical(lipgloss.Center, card, "", nav)
}
