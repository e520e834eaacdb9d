package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	username string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with unique default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     "Test User",
		username: "user_" + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// BuildAndAuthenticate registers the user via the API and returns the stored
// user and its token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"name":     b.name,
		"email":    b.email,
		"username": b.username,
		"password": b.password,
	})

	resp, err := http.Post(ts.APIURL("/user/register"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var user domain.User
	if err := ts.DB.DB.Where("username = ?", authResp.Username).First(&user).Error; err != nil {
		t.Fatalf("failed to load registered user: %v", err)
	}

	return &user, authResp.Token
}

// NoteBuilder creates test notes with a builder pattern
type NoteBuilder struct {
	owner     *domain.User
	title     string
	content   string
	color     domain.Color
	priority  int
	createdAt time.Time
}

// NewNoteBuilder creates a new NoteBuilder with default values
func NewNoteBuilder() *NoteBuilder {
	return &NoteBuilder{
		title:   "Test note",
		content: "Remember the milk",
		color:   domain.DefaultColor,
	}
}

func (b *NoteBuilder) WithOwner(user *domain.User) *NoteBuilder {
	b.owner = user
	return b
}

func (b *NoteBuilder) WithTitle(title string) *NoteBuilder {
	b.title = title
	return b
}

func (b *NoteBuilder) WithColor(color domain.Color) *NoteBuilder {
	b.color = color
	return b
}

func (b *NoteBuilder) WithPriority(priority int) *NoteBuilder {
	b.priority = priority
	return b
}

// WithCreatedAt pins the creation time, for tie-break ordering tests
func (b *NoteBuilder) WithCreatedAt(at time.Time) *NoteBuilder {
	b.createdAt = at
	return b
}

// Build inserts the note directly, bypassing the service
func (b *NoteBuilder) Build(t *testing.T, db *gorm.DB) *domain.Note {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	createdAt := b.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	note := &domain.Note{
		ID:        uuid.New(),
		UserID:    b.owner.ID,
		Title:     b.title,
		Content:   b.content,
		Color:     b.color,
		Priority:  b.priority,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err := db.Create(note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	return note
}
