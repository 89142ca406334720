package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"coachpath/internal/models"
	"coachpath/internal/repository"
)

// BackupVersion is written to every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	DatabaseType string             `json:"database_type"`
	Users        []UserBackup       `json:"users"`
	Progress     []ProgressBackup   `json:"progress"`
	Completions  []CompletionBackup `json:"completions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	Name             string    `json:"name"`
	OAuthProvider    string    `json:"oauth_provider"`
	OAuthSubject     string    `json:"oauth_subject"`
	RemindersEnabled bool      `json:"reminders_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProgressBackup represents an enrollment row for backup
type ProgressBackup struct {
	UserID         string     `json:"user_id"`
	Pathway        string     `json:"pathway"`
	CurrentDay     int        `json:"current_day"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt *time.Time `json:"last_activity_at"`
}

// CompletionBackup represents a lesson completion for backup
type CompletionBackup struct {
	UserID      string    `json:"user_id"`
	DayNumber   int       `json:"day_number"`
	CompletedAt time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	users        *repository.UserRepository
	progress     *repository.ProgressRepository
	databaseType string
}

// NewBackupService creates a new backup service
func NewBackupService(users *repository.UserRepository, progress *repository.ProgressRepository, databaseType string) *BackupService {
	return &BackupService{
		users:        users,
		progress:     progress,
		databaseType: databaseType,
	}
}

// Collect reads every exportable record into a BackupData
func (s *BackupService) Collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.databaseType,
		Users:        []UserBackup{},
		Progress:     []ProgressBackup{},
		Completions:  []CompletionBackup{},
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:               u.ID,
			Email:            u.Email,
			PasswordHash:     u.PasswordHash,
			Name:             u.Name,
			OAuthProvider:    u.OAuthProvider,
			OAuthSubject:     u.OAuthSubject,
			RemindersEnabled: u.RemindersEnabled,
			CreatedAt:        u.CreatedAt,
		})
	}

	progresses, err := s.progress.ListProgress(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	for _, p := range progresses {
		backup.Progress = append(backup.Progress, ProgressBackup{
			UserID:         p.UserID,
			Pathway:        string(p.Pathway),
			CurrentDay:     p.CurrentDay,
			StartedAt:      p.StartedAt,
			LastActivityAt: p.LastActivityAt,
		})
	}

	completions, err := s.progress.ListCompletions(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to export completions: %w", err)
	}
	for _, c := range completions {
		backup.Completions = append(backup.Completions, CompletionBackup{
			UserID:      c.UserID,
			DayNumber:   c.DayNumber,
			CompletedAt: c.CompletedAt,
		})
	}

	return backup, nil
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d progress rows, %d completions",
		len(backup.Users), len(backup.Progress), len(backup.Completions))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a database from a backup reader.
// Records are upserted, so importing the same backup twice is harmless.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	for _, u := range backup.Users {
		user := &models.User{
			ID:               u.ID,
			Email:            u.Email,
			PasswordHash:     u.PasswordHash,
			Name:             u.Name,
			OAuthProvider:    u.OAuthProvider,
			OAuthSubject:     u.OAuthSubject,
			RemindersEnabled: u.RemindersEnabled,
			CreatedAt:        u.CreatedAt,
		}
		if err := s.users.ImportUser(ctx, user); err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}

	for _, p := range backup.Progress {
		progress := models.UserProgress{
			UserID:         p.UserID,
			Pathway:        models.Pathway(p.Pathway),
			CurrentDay:     p.CurrentDay,
			StartedAt:      p.StartedAt,
			LastActivityAt: p.LastActivityAt,
		}
		if err := s.progress.UpsertProgress(ctx, progress); err != nil {
			return fmt.Errorf("failed to import progress of %s: %w", p.UserID, err)
		}
	}

	for _, c := range backup.Completions {
		completion := models.CompletionRecord{
			UserID:      c.UserID,
			DayNumber:   c.DayNumber,
			CompletedAt: c.CompletedAt,
		}
		if err := s.progress.UpsertCompletion(ctx, completion); err != nil {
			return fmt.Errorf("failed to import completion of %s: %w", c.UserID, err)
		}
	}

	log.Printf("Database import completed successfully: %d users, %d progress rows, %d completions",
		len(backup.Users), len(backup.Progress), len(backup.Completions))
	return nil
}
