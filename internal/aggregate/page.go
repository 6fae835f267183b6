package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
)

const (
	// DefaultPage is used when the page query value is missing or invalid.
	DefaultPage = 1
	// DefaultLimit is used when the limit query value is missing or invalid.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// MaxPage is the largest page number whose skip cannot overflow.
	MaxPage = math.MaxInt64/MaxLimit + 1
)

// Page is a 1-based page number and page size.
type Page struct {
	Number int64
	Limit  int64
}

// NewPage parses page and limit query values. Missing, malformed or
// non-positive values fall back to the defaults; limit is capped at MaxLimit
// and page at MaxPage.
func NewPage(page, limit string) Page {
	p := Page{Number: parsePositive(page, DefaultPage), Limit: parsePositive(limit, DefaultLimit)}
	return p.clamped()
}

func (p Page) clamped() Page {
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Number > MaxPage {
		p.Number = MaxPage
	}
	return p
}

// Skip is the number of documents preceding the page.
func (p Page) Skip() int64 {
	return (p.Number - 1) * p.Limit
}

func (p Page) stages() []Stage {
	if p.Number <= 0 || p.Limit <= 0 {
		p = Page{Number: DefaultPage, Limit: DefaultLimit}
	}
	p = p.clamped()
	return []Stage{Skip(p.Skip()), Limit(p.Limit)}
}

func parsePositive(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

var videoSortFields = map[string]SortType{
	"createdAt": SortTime,
	"updatedAt": SortTime,
	"views":     SortInteger,
	"duration":  SortNumber,
	"title":     SortText,
}

// VideoSort builds a sort key for video listings from the sortBy and
// sortType query values. withLikes also permits sorting by like count.
func VideoSort(sortBy, sortType string, withLikes bool) (SortKey, error) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		sortBy = "createdAt"
	}

	typ, ok := videoSortFields[sortBy]
	if !ok && withLikes && sortBy == "likes" {
		typ, ok = SortInteger, true
	}
	if !ok {
		return SortKey{}, apperr.InvalidArgument(fmt.Sprintf("cannot sort by %q", sortBy))
	}

	key := SortKey{Field: sortBy, Type: typ, Desc: true}
	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "", "desc", "-1":
	case "asc", "1":
		key.Desc = false
	default:
		return SortKey{}, apperr.InvalidArgument("sortType must be asc or desc")
	}
	return key, nil
}
