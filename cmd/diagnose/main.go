package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"coachpath/internal/config"
	"coachpath/internal/content"
	"coachpath/internal/database"
	"coachpath/internal/models"
	"coachpath/migrations"
)

var tables = []string{"users", "sessions", "user_progress", "lesson_completions", "reminder_log"}

func main() {
	contentOnly := flag.Bool("content-only", false, "Check the pathway content without opening the database")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()
	ctx := context.Background()

	ok := checkContent(cfg.ContentPath)

	if !*contentOnly {
		if !checkDatabase(ctx, cfg) {
			ok = false
		}
	}

	if !ok {
		os.Exit(1)
	}
	fmt.Println("All checks passed")
}

func checkContent(path string) bool {
	source := "embedded"
	if path != "" {
		source = path
	}
	fmt.Printf("Pathway content (%s)\n", source)

	catalog, err := content.Load(path)
	if err != nil {
		fmt.Printf("  ERROR: %v\n", err)
		return false
	}

	pathways := catalog.Pathways()
	fmt.Printf("  pathways: %d (expected 2)\n", len(pathways))
	fmt.Printf("  lessons:  %d (expected %d)\n", catalog.LessonCount(), 2*models.ProgramDays)
	fmt.Printf("  quiz questions: %d\n", len(catalog.Questions()))
	for _, p := range pathways {
		fmt.Printf("  %s %q\n", p.ID, p.Name)
		for _, l := range p.Lessons {
			fmt.Printf("    day %d  %-10s %s\n", l.DayNumber, l.ID, l.Title)
		}
	}
	return len(pathways) == 2 && catalog.LessonCount() == 2*models.ProgramDays
}

func checkDatabase(ctx context.Context, cfg *config.Config) bool {
	fmt.Printf("Database (%s)\n", cfg.DatabaseType)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fmt.Printf("  ERROR: %v\n", err)
		return false
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.Source(cfg.MigrationsPath)); err != nil {
		fmt.Printf("  ERROR: %v\n", err)
		return false
	}

	ok := true
	for _, table := range tables {
		n, err := db.CountRows(ctx, table)
		if err != nil {
			fmt.Printf("  %-20s ERROR: %v\n", table, err)
			ok = false
			continue
		}
		fmt.Printf("  %-20s %d\n", table, n)
	}
	return ok
}
