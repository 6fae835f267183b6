package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

type watchEntry struct {
	videoID   string
	watchedAt time.Time
}

type playlistEntry struct {
	videoID string
	addedAt time.Time
}

// MemoryStore keeps videos, comments, tweets and playlists in memory. It is
// used by tests and local tooling.
type MemoryStore struct {
	mu        sync.Mutex
	videos    map[string]models.Video
	comments  map[string]models.Comment
	tweets    map[string]models.Tweet
	playlists map[string]models.Playlist
	entries   map[string][]playlistEntry
	history   map[string][]watchEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		videos:    make(map[string]models.Video),
		comments:  make(map[string]models.Comment),
		tweets:    make(map[string]models.Tweet),
		playlists: make(map[string]models.Playlist),
		entries:   make(map[string][]playlistEntry),
		history:   make(map[string][]watchEntry),
	}
}

func (s *MemoryStore) CreateVideo(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; ok {
		return apperr.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *MemoryStore) FindVideo(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, apperr.ErrNotFound
	}
	return video, nil
}

func (s *MemoryStore) UpdateVideo(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

// DeleteVideo removes the video with its comments, playlist entries and
// history entries.
func (s *MemoryStore) DeleteVideo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.videos, id)
	for cid, c := range s.comments {
		if c.VideoID == id {
			delete(s.comments, cid)
		}
	}
	for pid, entries := range s.entries {
		s.entries[pid] = dropEntry(entries, id)
	}
	for uid, watched := range s.history {
		kept := watched[:0]
		for _, w := range watched {
			if w.videoID != id {
				kept = append(kept, w)
			}
		}
		s.history[uid] = kept
	}
	return nil
}

func (s *MemoryStore) RecordView(_ context.Context, _ string, videoID, viewerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return apperr.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video

	watched := s.history[viewerID]
	for i, w := range watched {
		if w.videoID == videoID {
			watched[i].watchedAt = at
			s.history[viewerID] = watched
			return nil
		}
	}
	s.history[viewerID] = append(watched, watchEntry{videoID: videoID, watchedAt: at})
	return nil
}

// History returns the video ids watched by userID, most recent first.
func (s *MemoryStore) History(userID string) []string {
	s.mu.Lock()
	watched := append([]watchEntry(nil), s.history[userID]...)
	s.mu.Unlock()

	sort.SliceStable(watched, func(i, j int) bool { return watched[i].watchedAt.After(watched[j].watchedAt) })
	ids := make([]string, 0, len(watched))
	for _, w := range watched {
		ids = append(ids, w.videoID)
	}
	return ids
}

func (s *MemoryStore) CreateComment(_ context.Context, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[c.VideoID]; !ok {
		return apperr.ErrNotFound
	}
	s.comments[c.ID] = c
	return nil
}

func (s *MemoryStore) FindComment(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, apperr.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) UpdateComment(_ context.Context, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.comments[c.ID] = c
	return nil
}

func (s *MemoryStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) CreateTweet(_ context.Context, t models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets[t.ID] = t
	return nil
}

func (s *MemoryStore) FindTweet(_ context.Context, id string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, apperr.ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTweet(_ context.Context, t models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.tweets[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTweet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func (s *MemoryStore) CreatePlaylist(_ context.Context, p models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[p.ID]; ok {
		return apperr.ErrConflict
	}
	p.Videos = nil
	s.playlists[p.ID] = p
	return nil
}

func (s *MemoryStore) FindPlaylist(_ context.Context, id string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, apperr.ErrNotFound
	}
	p.Videos = make([]string, 0, len(s.entries[id]))
	for _, e := range s.entries[id] {
		p.Videos = append(p.Videos, e.videoID)
	}
	return p, nil
}

func (s *MemoryStore) UpdatePlaylist(_ context.Context, p models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	p.Videos = nil
	s.playlists[p.ID] = p
	return nil
}

func (s *MemoryStore) DeletePlaylist(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) AddPlaylistVideo(_ context.Context, _ string, playlistID, videoID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[playlistID]
	if !ok {
		return apperr.ErrNotFound
	}
	if _, ok := s.videos[videoID]; !ok {
		return apperr.ErrNotFound
	}
	for _, e := range s.entries[playlistID] {
		if e.videoID == videoID {
			return apperr.ErrConflict
		}
	}
	s.entries[playlistID] = append(s.entries[playlistID], playlistEntry{videoID: videoID, addedAt: at})
	p.UpdatedAt = at
	s.playlists[playlistID] = p
	return nil
}

func (s *MemoryStore) RemovePlaylistVideo(_ context.Context, playlistID, videoID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.entries[playlistID]
	kept := dropEntry(entries, videoID)
	if len(kept) == len(entries) {
		return false, nil
	}
	s.entries[playlistID] = kept
	if p, ok := s.playlists[playlistID]; ok {
		p.UpdatedAt = at
		s.playlists[playlistID] = p
	}
	return true, nil
}

func dropEntry(entries []playlistEntry, videoID string) []playlistEntry {
	kept := make([]playlistEntry, 0, len(entries))
	for _, e := range entries {
		if e.videoID != videoID {
			kept = append(kept, e)
		}
	}
	return kept
}

var (
	_ VideoStore    = (*MemoryStore)(nil)
	_ CommentStore  = (*MemoryStore)(nil)
	_ TweetStore    = (*MemoryStore)(nil)
	_ PlaylistStore = (*MemoryStore)(nil)
)
