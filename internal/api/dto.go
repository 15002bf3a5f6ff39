package api

// channelRefDTO is the embedded channel summary on videos and clips
type channelRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type videoDTO struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     *channelRefDTO `json:"channel"`
	Duration    float64        `json:"duration"` // Seconds
	Views       int64          `json:"views"`
	Likes       int64          `json:"likes"`
	PublishedAt string         `json:"publishedAt"`
	Thumbnail   string         `json:"thumbnail"`
	Liked       bool           `json:"liked"`
}

type clipDTO struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Channel  *channelRefDTO `json:"channel"`
	Duration float64        `json:"duration"`
	Views    int64          `json:"views"`
	VideoURL string         `json:"videoUrl"`
}

type channelDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Subscribers int64  `json:"subscribers"`
	VideoCount  int    `json:"videoCount"`
}

type historyDTO struct {
	ID        string   `json:"id"`
	Video     videoDTO `json:"video"`
	WatchedAt string   `json:"watchedAt"`
}

type liveDTO struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Channel  *channelRefDTO `json:"channel"`
	StartsAt string         `json:"startsAt"`
	Viewers  int64          `json:"viewers"`
	Status   string         `json:"state"` // "live", "scheduled", "ended"
	Joined   bool           `json:"joined"`
}

type userDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// meResponse accepts both {"user": {...}} and a bare user object
type meResponse struct {
	userDTO
	User *userDTO `json:"user"`
}
