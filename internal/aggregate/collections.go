package aggregate

// Document views over the relational schema. Credential columns of users
// (password hash, refresh token) are deliberately absent.
var (
	Users = Collection{Table: "users", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "username", Column: "username", Type: "TEXT"},
		{Name: "email", Column: "email", Type: "TEXT"},
		{Name: "fullName", Column: "full_name", Type: "TEXT"},
		{Name: "avatar", Column: "avatar_url", Type: "TEXT"},
		{Name: "coverImage", Column: "cover_image_url", Type: "TEXT"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updatedAt", Column: "updated_at", Type: "TIMESTAMPTZ"},
	}}

	Videos = Collection{Table: "videos", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "owner", Column: "owner_id", Type: "UUID"},
		{Name: "title", Column: "title", Type: "TEXT"},
		{Name: "description", Column: "description", Type: "TEXT"},
		{Name: "videoFile", Column: "video_url", Type: "TEXT"},
		{Name: "thumbnail", Column: "thumbnail_url", Type: "TEXT"},
		{Name: "duration", Column: "duration", Type: "FLOAT8"},
		{Name: "views", Column: "views", Type: "INT8"},
		{Name: "isPublished", Column: "is_published", Type: "BOOL"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updatedAt", Column: "updated_at", Type: "TIMESTAMPTZ"},
	}}

	Comments = Collection{Table: "comments", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "owner", Column: "owner_id", Type: "UUID"},
		{Name: "video", Column: "video_id", Type: "UUID"},
		{Name: "content", Column: "content", Type: "TEXT"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updatedAt", Column: "updated_at", Type: "TIMESTAMPTZ"},
	}}

	Tweets = Collection{Table: "tweets", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "owner", Column: "owner_id", Type: "UUID"},
		{Name: "content", Column: "content", Type: "TEXT"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updatedAt", Column: "updated_at", Type: "TIMESTAMPTZ"},
	}}

	Likes = Collection{Table: "likes", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "likedBy", Column: "liked_by", Type: "UUID"},
		{Name: "video", Column: "video_id", Type: "UUID"},
		{Name: "comment", Column: "comment_id", Type: "UUID"},
		{Name: "tweet", Column: "tweet_id", Type: "UUID"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
	}}

	Subscriptions = Collection{Table: "subscriptions", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "subscriber", Column: "subscriber_id", Type: "UUID"},
		{Name: "channel", Column: "channel_id", Type: "UUID"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
	}}

	Playlists = Collection{Table: "playlists", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "owner", Column: "owner_id", Type: "UUID"},
		{Name: "name", Column: "name", Type: "TEXT"},
		{Name: "description", Column: "description", Type: "TEXT"},
		{Name: "createdAt", Column: "created_at", Type: "TIMESTAMPTZ"},
		{Name: "updatedAt", Column: "updated_at", Type: "TIMESTAMPTZ"},
	}}

	PlaylistVideos = Collection{Table: "playlist_videos", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "playlist", Column: "playlist_id", Type: "UUID"},
		{Name: "video", Column: "video_id", Type: "UUID"},
		{Name: "addedAt", Column: "added_at", Type: "TIMESTAMPTZ"},
	}}

	WatchHistory = Collection{Table: "watch_history", Fields: []Field{
		{Name: "_id", Column: "id", Type: "UUID"},
		{Name: "user", Column: "user_id", Type: "UUID"},
		{Name: "video", Column: "video_id", Type: "UUID"},
		{Name: "watchedAt", Column: "watched_at", Type: "TIMESTAMPTZ"},
	}}
)
