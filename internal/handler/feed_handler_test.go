package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/ranking"
)

type staticFeed struct {
	viewer uint
	list   []ranking.Candidate
	err    error
}

func (f *staticFeed) Rank(_ context.Context, viewerID uint) (*ranking.Ranking, error) {
	f.viewer = viewerID
	if f.err != nil {
		return nil, f.err
	}
	return &ranking.Ranking{Candidates: f.list}, nil
}

func TestFeedHandler_Pages(t *testing.T) {
	feed := &staticFeed{}
	for i := uint(1); i <= 25; i++ {
		feed.list = append(feed.list, ranking.Candidate{ProfileID: i, UserID: i + 1000})
	}
	r := gin.New()
	r.GET("/feed", auth.AuthMiddleware(testSecret), NewFeedHandler(feed).GetFeed)

	tests := []struct {
		name      string
		query     string
		wantFirst uint
		wantLen   int
		wantPages int
	}{
		{"defaults", "", 1, 10, 3},
		{"second page", "?page=2&limit=10", 11, 10, 3},
		{"last partial page", "?page=3&limit=10", 21, 5, 3},
		{"past the end", "?page=9&limit=10", 0, 0, 3},
		{"limit capped", "?limit=1000", 1, 25, 1},
		{"garbage params", "?page=x&limit=-2", 1, 10, 3},
		{"huge page", "?page=922337203685477581&limit=100", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PaginatedResponse[ranking.Candidate]
			if code := do(t, r, http.MethodGet, "/feed"+tt.query, 7, nil, &got); code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if len(got.Data) != tt.wantLen || got.Meta.TotalItems != 25 || got.Meta.TotalPages != tt.wantPages {
				t.Fatalf("page = %d items, meta %+v", len(got.Data), got.Meta)
			}
			if tt.wantLen > 0 && got.Data[0].ProfileID != tt.wantFirst {
				t.Errorf("first = %d, want %d", got.Data[0].ProfileID, tt.wantFirst)
			}
		})
	}
	if feed.viewer != 7 {
		t.Errorf("ranked for viewer %d, want 7", feed.viewer)
	}
}

func TestFeedHandler_Error(t *testing.T) {
	r := gin.New()
	r.GET("/feed", auth.AuthMiddleware(testSecret), NewFeedHandler(&staticFeed{err: errors.New("db down")}).GetFeed)
	if code := do(t, r, http.MethodGet, "/feed", 7, nil, nil); code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
}
