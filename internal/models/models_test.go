package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    "user-1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestParseQuizAnswer(t *testing.T) {
	tests := []struct {
		input  string
		want   QuizAnswer
		wantOK bool
	}{
		{input: "BOOST", want: AnswerBoost, wantOK: true},
		{input: " relax ", want: AnswerRelax, wantOK: true},
		{input: "Boost", want: AnswerBoost, wantOK: true},
		{input: "CALM", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQuizAnswer(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseQuizAnswer(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseQuizAnswer(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathwayIsValid(t *testing.T) {
	tests := []struct {
		pathway Pathway
		want    bool
	}{
		{PathwayBoost, true},
		{PathwayRelax, true},
		{PathwayNotStarted, false},
		{Pathway(""), false},
	}

	for _, tt := range tests {
		if got := tt.pathway.IsValid(); got != tt.want {
			t.Errorf("Pathway(%q).IsValid() = %v, want %v", tt.pathway, got, tt.want)
		}
	}
}

func TestUserProfileProjection(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: "u1", Email: "a@example.com", Name: "Alex", PasswordHash: "secret", CreatedAt: created}

	p := u.Profile()
	if p.UserID != "u1" || p.Email != "a@example.com" || p.Name != "Alex" || !p.CreatedAt.Equal(created) {
		t.Errorf("Profile() = %+v", p)
	}
}
