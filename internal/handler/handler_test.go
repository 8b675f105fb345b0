package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
	"matchwell/backend/pkg/jwt"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type profileBook struct {
	mu     sync.Mutex
	byUser map[uint]*models.Profile
}

func newProfileBook() *profileBook {
	return &profileBook{byUser: map[uint]*models.Profile{}}
}

func (b *profileBook) add(userID uint, status models.ApprovalStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byUser[userID] = &models.Profile{
		ID:             userID + 100,
		UserID:         userID,
		FullName:       fmt.Sprintf("User %d", userID),
		Email:          fmt.Sprintf("user%d@example.com", userID),
		ApprovalStatus: status,
		IsActive:       true,
	}
}

func (b *profileBook) ByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.byUser[userID]
	if !ok {
		return nil, interest.ErrNoRecord
	}
	cp := *p
	return &cp, nil
}

func (b *profileBook) ByID(_ context.Context, profileID uint) (*models.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.byUser {
		if p.ID == profileID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, interest.ErrNoRecord
}

func (b *profileBook) ApprovalStatus(ctx context.Context, userID uint) (models.ApprovalStatus, error) {
	p, err := b.ByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.ApprovalStatus, nil
}

func (b *profileBook) SetApprovalStatus(_ context.Context, profileID uint, status models.ApprovalStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.byUser {
		if p.ID == profileID {
			p.ApprovalStatus = status
			return nil
		}
	}
	return interest.ErrNoRecord
}

type fixedStats struct{}

func (fixedStats) Totals(_ context.Context, userID uint) (models.InterestStats, error) {
	return models.InterestStats{UserID: userID, Sent: 3, Received: 2, MutualMatches: 1}, nil
}

func (fixedStats) Points(context.Context, uint) (int64, error) { return 12, nil }

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := jwt.GenerateToken(userID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return "Bearer " + tok
}

// do sends a JSON request as userID (0 means anonymous) and decodes the response into out.
func do(t *testing.T, r http.Handler, method, path string, userID uint, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", bearer(t, userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func interestRouter(book *profileBook) *gin.Engine {
	engine := interest.NewEngine(interest.NewMemoryStore(), book, book, nil)
	h := NewInterestHandler(engine, fixedStats{})

	r := gin.New()
	g := r.Group("/api/v1/interests", auth.AuthMiddleware(testSecret))
	g.POST("", h.Express)
	g.GET("/received", h.ListReceived)
	g.GET("/sent", h.ListSent)
	g.GET("/stats", h.Stats)
	g.GET("/check/:profileId", h.CheckMutual)
	g.POST("/:id/respond", h.Respond)
	return r
}
