package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
	"matchwell/backend/internal/repository"
	"matchwell/backend/pkg/jwt"
)

type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	profiles map[uint]*models.Profile
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{accounts: map[string]*models.Account{}, profiles: map[uint]*models.Profile{}}
}

func (m *memoryAccounts) Register(_ context.Context, account *models.Account, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Email]; ok {
		return repository.ErrEmailTaken
	}
	account.ID = uint(len(m.accounts) + 1)
	profile.UserID = account.ID
	m.accounts[account.Email] = account
	m.profiles[account.ID] = profile
	return nil
}

func (m *memoryAccounts) ByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, interest.ErrNoRecord
	}
	return a, nil
}

func authRouter(accounts Accounts) *gin.Engine {
	h := NewAuthHandler(accounts, testSecret, 0)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	accounts := newMemoryAccounts()
	r := authRouter(accounts)

	var reg TokenResponse
	input := RegisterInput{FullName: "Ann Lee", Email: "Ann@Example.com", Password: "password123", ReferralCode: " ab12cd34 "}
	if code := do(t, r, http.MethodPost, "/auth/register", 0, input, &reg); code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", code)
	}
	userID, err := jwt.ParseToken(reg.Token, testSecret)
	if err != nil || userID != 1 {
		t.Fatalf("register token subject = %d, %v", userID, err)
	}

	p := accounts.profiles[1]
	if p.ApprovalStatus != models.ApprovalPending || p.Email != "ann@example.com" || !p.IsActive {
		t.Errorf("profile = %+v", p)
	}
	if p.ReferredBy == nil || *p.ReferredBy != "AB12CD34" {
		t.Errorf("referred by = %v, want AB12CD34", p.ReferredBy)
	}
	if p.ReferralCode == nil || len(*p.ReferralCode) != 8 {
		t.Errorf("referral code = %v", p.ReferralCode)
	}

	if code := do(t, r, http.MethodPost, "/auth/register", 0, input, nil); code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", code)
	}

	var login TokenResponse
	if code := do(t, r, http.MethodPost, "/auth/login", 0, LoginInput{Email: "ann@example.com", Password: "password123"}, &login); code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", code)
	}
	if login.Token == "" {
		t.Error("login returned no token")
	}
}

func TestAuthHandler_Rejects(t *testing.T) {
	accounts := newMemoryAccounts()
	r := authRouter(accounts)
	do(t, r, http.MethodPost, "/auth/register", 0, RegisterInput{FullName: "Bo", Email: "bo@example.com", Password: "password123"}, nil)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"short password", "/auth/register", RegisterInput{FullName: "X", Email: "x@example.com", Password: "short"}, http.StatusBadRequest},
		{"bad email", "/auth/register", RegisterInput{FullName: "X", Email: "nope", Password: "password123"}, http.StatusBadRequest},
		{"wrong password", "/auth/login", LoginInput{Email: "bo@example.com", Password: "password999"}, http.StatusUnauthorized},
		{"unknown email", "/auth/login", LoginInput{Email: "zed@example.com", Password: "password123"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, r, http.MethodPost, tt.path, 0, tt.body, nil); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}
