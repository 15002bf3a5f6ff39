package api

import (
	"time"

	"github.com/mmcdole/vidfeed/internal/domain"
)

// mapVideo converts an API video to a domain video. Records without an ID
// are rejected.
func mapVideo(d videoDTO) (domain.Video, bool) {
	if d.ID == "" {
		return domain.Video{}, false
	}
	v := domain.Video{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Duration:    seconds(d.Duration),
		Views:       d.Views,
		Likes:       d.Likes,
		PublishedAt: parseTime(d.PublishedAt),
		ThumbURL:    d.Thumbnail,
		Liked:       d.Liked,
	}
	if d.Channel != nil {
		v.ChannelID = d.Channel.ID
		v.ChannelName = d.Channel.Name
	}
	return v, true
}

func mapClip(d clipDTO) (domain.Clip, bool) {
	if d.ID == "" {
		return domain.Clip{}, false
	}
	c := domain.Clip{
		ID:        d.ID,
		Title:     d.Title,
		Duration:  seconds(d.Duration),
		Views:     d.Views,
		StreamURL: d.VideoURL,
	}
	if d.Channel != nil {
		c.ChannelID = d.Channel.ID
		c.ChannelName = d.Channel.Name
	}
	return c, true
}

func mapChannel(d channelDTO) (domain.Channel, bool) {
	if d.ID == "" {
		return domain.Channel{}, false
	}
	return domain.Channel{
		ID:          d.ID,
		Name:        d.Name,
		Handle:      d.Handle,
		Subscribers: d.Subscribers,
		VideoCount:  d.VideoCount,
	}, true
}

func mapHistory(d historyDTO) (domain.HistoryEntry, bool) {
	video, ok := mapVideo(d.Video)
	if !ok {
		return domain.HistoryEntry{}, false
	}
	id := d.ID
	if id == "" {
		id = video.ID
	}
	return domain.HistoryEntry{
		ID:        id,
		Video:     video,
		WatchedAt: parseTime(d.WatchedAt),
	}, true
}

func mapLive(d liveDTO) (domain.LiveEvent, bool) {
	if d.ID == "" {
		return domain.LiveEvent{}, false
	}
	e := domain.LiveEvent{
		ID:       d.ID,
		Title:    d.Title,
		StartsAt: parseTime(d.StartsAt),
		Viewers:  d.Viewers,
		IsLive:   d.Status == "live",
		Joined:   d.Joined,
	}
	if d.Channel != nil {
		e.ChannelID = d.Channel.ID
		e.ChannelName = d.Channel.Name
	}
	return e, true
}

func mapUser(d userDTO) *domain.User {
	name := d.DisplayName
	if name == "" {
		name = d.Username
	}
	return &domain.User{
		ID:          d.ID,
		Username:    d.Username,
		DisplayName: name,
	}
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// parseTime accepts RFC3339 timestamps; anything else maps to the zero time
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
