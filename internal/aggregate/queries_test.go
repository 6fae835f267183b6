package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
)

const (
	channelID = "22222222-2222-4222-8222-222222222222"
	videoID   = "33333333-3333-4333-8333-333333333333"
)

type fakeReader struct {
	docs  []string
	err   error
	calls int
	sql   string
	args  []any
}

func (f *fakeReader) QueryDocuments(_ context.Context, sql string, args ...any) ([][]byte, error) {
	f.calls++
	f.sql = sql
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]byte, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, []byte(d))
	}
	return out, nil
}

func TestChannelStatsDecodesTotals(t *testing.T) {
	reader := &fakeReader{docs: []string{`{
		"_id": "` + channelID + `",
		"username": "chai",
		"fullName": "Chai Code",
		"avatar": "https://cdn.example/avatar.png",
		"coverImage": "",
		"totalVideos": 2,
		"totalViews": 12,
		"totalVideoLikes": 1,
		"totalSubscribers": 2,
		"totalChannelSubscribedTo": 0
	}`}}
	engine := NewEngine(reader)

	stats, err := engine.ChannelStats(context.Background(), channelID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalViews != 12 || stats.TotalVideoLikes != 1 || stats.TotalSubscribers != 2 || stats.TotalVideos != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(reader.args) == 0 || reader.args[0] != channelID {
		t.Fatalf("expected channel id as first argument, got %#v", reader.args)
	}
}

func TestNotFoundPolicies(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&fakeReader{})
	sort := SortKey{Field: "createdAt", Type: SortTime, Desc: true}

	cases := []struct {
		name    string
		call    func() error
		message string
	}{
		{"channel stats", func() error { _, err := engine.ChannelStats(ctx, channelID); return err }, "Channel stats not found"},
		{"channel videos", func() error {
			_, err := engine.ChannelVideos(ctx, channelID, "", sort, NewPage("", ""))
			return err
		}, "No channel videos found"},
		{"liked videos", func() error { _, err := engine.LikedVideos(ctx, channelID); return err }, "No videos found"},
		{"channel profile", func() error { _, err := engine.ChannelProfile(ctx, "ghost", channelID); return err }, "Channel does not exist"},
		{"watch history", func() error { _, err := engine.WatchHistory(ctx, channelID); return err }, "User does not exist"},
		{"video", func() error { _, err := engine.VideoByID(ctx, videoID); return err }, "Video not found"},
		{"playlists", func() error { _, err := engine.UserPlaylists(ctx, channelID); return err }, "No playlists found"},
		{"playlist", func() error { _, err := engine.PlaylistByID(ctx, videoID); return err }, "Playlist not found"},
		{"subscribers", func() error { _, err := engine.ChannelSubscribers(ctx, channelID); return err }, "Channel does not exist"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found got %v", err)
			}
			if msg := apperr.PublicMessage(err); msg != tc.message {
				t.Fatalf("expected message %q got %q", tc.message, msg)
			}
		})
	}
}

func TestEmptyListsAreValid(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&fakeReader{})
	sort := SortKey{Field: "createdAt", Type: SortTime, Desc: true}

	comments, err := engine.VideoComments(ctx, videoID, NewPage("", ""))
	if err != nil || comments == nil || len(comments) != 0 {
		t.Fatalf("expected empty comments, got %#v err=%v", comments, err)
	}
	videos, err := engine.AllVideos(ctx, "", "", sort, NewPage("", ""))
	if err != nil || len(videos) != 0 {
		t.Fatalf("expected empty videos, got %#v err=%v", videos, err)
	}
	tweets, err := engine.UserTweets(ctx, channelID)
	if err != nil || len(tweets) != 0 {
		t.Fatalf("expected empty tweets, got %#v err=%v", tweets, err)
	}
	channels, err := engine.SubscribedChannels(ctx, channelID)
	if err != nil || len(channels) != 0 {
		t.Fatalf("expected empty channels, got %#v err=%v", channels, err)
	}
}

func TestChannelSubscribersEmptyChannel(t *testing.T) {
	engine := NewEngine(&fakeReader{docs: []string{`{"_id":"` + channelID + `","subscribers":[]}`}})
	subscribers, err := engine.ChannelSubscribers(context.Background(), channelID)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if subscribers == nil || len(subscribers) != 0 {
		t.Fatalf("expected empty list got %#v", subscribers)
	}
}

func TestWatchHistoryFlattensEntries(t *testing.T) {
	reader := &fakeReader{docs: []string{`{"_id":"` + channelID + `","history":[
		{"_id":"h2","video":{"_id":"v2","title":"second","owner":{"_id":"o","username":"chai"}}},
		{"_id":"h1","video":{"_id":"v1","title":"first","owner":{"_id":"o","username":"chai"}}}
	]}`}}
	engine := NewEngine(reader)

	videos, err := engine.WatchHistory(context.Background(), channelID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(videos) != 2 || videos[0].ID != "v2" || videos[1].ID != "v1" {
		t.Fatalf("unexpected history %+v", videos)
	}
	if videos[0].Owner.Username != "chai" {
		t.Fatalf("expected owner embedded, got %+v", videos[0].Owner)
	}
}

func TestVideoCommentsPagination(t *testing.T) {
	reader := &fakeReader{}
	engine := NewEngine(reader)

	if _, err := engine.VideoComments(context.Background(), videoID, NewPage("3", "5")); err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(reader.args) != 3 || reader.args[1] != int64(10) || reader.args[2] != int64(5) {
		t.Fatalf("expected skip 10 limit 5, got %#v", reader.args)
	}
}

func TestInvalidIdentifiersFailBeforeQuery(t *testing.T) {
	reader := &fakeReader{}
	engine := NewEngine(reader)
	ctx := context.Background()

	if _, err := engine.VideoComments(ctx, "nope", NewPage("", "")); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument got %v", err)
	}
	if _, err := engine.ChannelProfile(ctx, "   ", channelID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for blank username got %v", err)
	}
	if _, err := engine.AllVideos(ctx, "", "bad-id", SortKey{Field: "createdAt", Type: SortTime}, NewPage("", "")); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for owner filter got %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("expected no queries, got %d", reader.calls)
	}
}

func TestReaderErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	engine := NewEngine(&fakeReader{err: boom})

	_, err := engine.LikedVideos(context.Background(), channelID)
	if !errors.Is(err, boom) {
		t.Fatalf("expected reader error, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("expected internal kind, got %s", apperr.KindOf(err))
	}
}

func TestChannelProfileMatchesLowercasedUsername(t *testing.T) {
	reader := &fakeReader{docs: []string{`{"_id":"` + channelID + `","username":"chai","subscribersCount":1,"isSubscribed":true}`}}
	engine := NewEngine(reader)

	profile, err := engine.ChannelProfile(context.Background(), "  Chai ", videoID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !profile.IsSubscribed || profile.SubscribersCount != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if reader.args[0] != "chai" {
		t.Fatalf("expected lowercased username arg, got %#v", reader.args[0])
	}
}

func TestHugePageNumberStillQueries(t *testing.T) {
	reader := &fakeReader{}
	engine := NewEngine(reader)
	sort := SortKey{Field: "createdAt", Type: SortTime, Desc: true}

	videos, err := engine.AllVideos(context.Background(), "", "", sort, NewPage("9223372036854775807", "10"))
	if err != nil {
		t.Fatalf("all videos: %v", err)
	}
	if len(videos) != 0 || reader.calls != 1 {
		t.Fatalf("expected an empty page from one query, got %d videos after %d calls", len(videos), reader.calls)
	}
	for _, arg := range reader.args {
		if n, ok := arg.(int64); ok && n < 0 {
			t.Fatalf("negative query argument %d in %#v", n, reader.args)
		}
	}
}
