package main

import (
	"fmt"
	"log"
	"time"

	"stagepass/internal/events"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting StagePass database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding events...")
	if err := seeder.SeedEvents(); err != nil {
		log.Fatalf("Failed to seed events: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"seat_reservations",
		"tickets",
		"bookings",
		"sections",
		"events",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedEvents inserts a spread of sample events with seat grids.
func (s *Seeder) SeedEvents() error {
	adminID := uuid.New()
	now := time.Now()

	sampleEvents := []events.Event{
		{
			Title:       "Midnight Orchestra Live",
			Description: "A full symphonic performance under the city lights.",
			Category:    "Concert",
			Location:    "Grand Hall, Riverside",
			Date:        now.AddDate(0, 0, 14),
			Time:        "19:30",
			Status:      events.StatusUpcoming,
			IsFeatured:  true,
			CreatedBy:   adminID,
			Sections: []events.Section{
				{Name: "Gold", RowCount: 5, ColCount: 10, BasePrice: 500, Position: 0},
				{Name: "Silver", RowCount: 10, ColCount: 12, BasePrice: 300, Position: 1},
				{Name: "Bronze", RowCount: 15, ColCount: 14, BasePrice: 150, Position: 2},
			},
		},
		{
			Title:       "Stand-Up Night: Open Mic Finals",
			Description: "The funniest newcomers of the season compete for the crown.",
			Category:    "Comedy",
			Location:    "The Basement Club",
			Date:        now.AddDate(0, 0, 7),
			Time:        "21:00",
			Status:      events.StatusUpcoming,
			CreatedBy:   adminID,
			Sections: []events.Section{
				{Name: "Front", RowCount: 4, ColCount: 8, BasePrice: 120, Position: 0},
				{Name: "Back", RowCount: 8, ColCount: 10, BasePrice: 80, Position: 1},
			},
		},
		{
			Title:       "Tech Summit Keynotes",
			Description: "A day of keynotes from engineering leaders.",
			Category:    "Conference",
			Location:    "Convention Center, Hall B",
			Date:        now.AddDate(0, 1, 0),
			Time:        "09:00",
			Status:      events.StatusUpcoming,
			CreatedBy:   adminID,
			Sections: []events.Section{
				{Name: "Premium", RowCount: 6, ColCount: 12, BasePrice: 900, Position: 0},
				{Name: "Standard", RowCount: 20, ColCount: 16, BasePrice: 400, Position: 1},
			},
		},
		{
			Title:       "Retro Film Marathon",
			Description: "Back-to-back screenings of four cult classics.",
			Category:    "Cinema",
			Location:    "Odeon Theatre",
			Date:        now.AddDate(0, 0, -3),
			Time:        "18:00",
			Status:      events.StatusCompleted,
			CreatedBy:   adminID,
			Sections: []events.Section{
				{Name: "Main", RowCount: 12, ColCount: 14, BasePrice: 60, Position: 0},
			},
		},
	}

	for i := range sampleEvents {
		if err := s.db.PostgreSQL.Create(&sampleEvents[i]).Error; err != nil {
			return fmt.Errorf("failed to create event %q: %w", sampleEvents[i].Title, err)
		}
		fmt.Printf("  Created event: %s (%d sections)\n",
			sampleEvents[i].Title, len(sampleEvents[i].Sections))
	}

	return nil
}
