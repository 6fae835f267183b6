package models

import "time"

// Owner is the public projection of a user embedded into other views.
type Owner struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoView is a video with its owner embedded.
type VideoView struct {
	ID          string    `json:"_id"`
	Owner       Owner     `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChannelVideo is a channel's own video annotated with its like count.
type ChannelVideo struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentView is a comment with its owner embedded.
type CommentView struct {
	ID        string    `json:"_id"`
	Video     string    `json:"video"`
	Content   string    `json:"content"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TweetView is a tweet with its owner and like count.
type TweetView struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Owner     Owner     `json:"owner"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChannelStats summarises a channel for its dashboard.
type ChannelStats struct {
	ID                       string `json:"_id"`
	Username                 string `json:"username"`
	FullName                 string `json:"fullName"`
	Avatar                   string `json:"avatar"`
	CoverImage               string `json:"coverImage"`
	TotalVideos              int64  `json:"totalVideos"`
	TotalViews               int64  `json:"totalViews"`
	TotalVideoLikes          int64  `json:"totalVideoLikes"`
	TotalSubscribers         int64  `json:"totalSubscribers"`
	TotalChannelSubscribedTo int64  `json:"totalChannelSubscribedTo"`
}

// ChannelProfile is the public channel page as seen by a particular viewer.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// SubscriberEntry lists a user subscribed to a channel.
type SubscriberEntry struct {
	ID         string    `json:"_id"`
	Subscriber Owner     `json:"subscriber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubscribedChannelEntry lists a channel a user subscribes to.
type SubscribedChannelEntry struct {
	ID        string    `json:"_id"`
	Channel   Owner     `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaylistSummary is the list representation of a playlist.
type PlaylistSummary struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoCount  int64     `json:"videoCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist with its owner and videos expanded.
type PlaylistDetail struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Owner       Owner       `json:"owner"`
	Videos      []VideoView `json:"videos"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
