package domain

// ListItem is the polymorphic interface for items that can be displayed in lists.
// Video, Clip, Channel, HistoryEntry and LiveEvent implement it directly.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (channel, views, duration)
	GetDescription() string
}

var (
	_ ListItem = Video{}
	_ ListItem = Clip{}
	_ ListItem = Channel{}
	_ ListItem = HistoryEntry{}
	_ ListItem = LiveEvent{}
)
