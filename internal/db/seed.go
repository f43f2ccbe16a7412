package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedAuthors = []string{
	"Ursula K. Le Guin", "Octavia Butler", "Ted Chiang", "N.K. Jemisin",
	"Haruki Murakami", "Kazuo Ishiguro", "Agatha Christie", "Brandon Sanderson",
	"Donna Tartt", "Cormac McCarthy", "Zadie Smith", "Andy Weir",
}

var seedCategories = []string{
	"sci-fi", "fantasy", "mystery", "literary", "thriller", "non-fiction",
}

// SeedTestData resets the database and populates it with demo users and
// interaction history.
//
// Behavior:
//  1. Clears existing users, interactions and match output tables.
//  2. Creates 20 users (10 male, 10 female), all opted in, with hashed
//     passwords and mixed gender preferences.
//  3. Generates 15-40 interactions per user over the last 60 days, with
//     skewed author picks so taste clusters emerge, ~80% rated, ~10%
//     private.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"messages", "conversations", "pairings", "cycle_reports", "interactions", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE interactions AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'interactions'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}
		pref := "any"
		if i%3 == 0 {
			if gender == "male" {
				pref = "female"
			} else {
				pref = "male"
			}
		}

		user := User{
			Username:        fmt.Sprintf("reader%d", i),
			Email:           fmt.Sprintf("reader%d@example.com", i),
			PasswordHash:    string(hash),
			DisplayName:     fmt.Sprintf("Reader %d", i),
			Gender:          gender,
			PreferredGender: pref,
			MatchOptIn:      true,
			Active:          true,
			LastLoginAt:     time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		// --- Interaction history ---
		// Each user favors a small author cluster so similar pairs exist.
		favorite := (i / 3) % len(seedAuthors)
		count := 15 + r.Intn(26)
		for j := 0; j < count; j++ {
			authorIdx := favorite
			if r.Intn(100) < 40 {
				authorIdx = r.Intn(len(seedAuthors))
			}

			var rating *float64
			if r.Intn(100) < 80 {
				v := float64(1 + r.Intn(5))
				rating = &v
			}

			visibility := "public"
			if r.Intn(100) < 10 {
				visibility = "private"
			}

			interaction := Interaction{
				UserID:     user.ID,
				ItemID:     fmt.Sprintf("item-%d-%d", user.ID, j),
				ItemKind:   "book",
				Author:     seedAuthors[authorIdx],
				Categories: []string{seedCategories[authorIdx%len(seedCategories)], seedCategories[r.Intn(len(seedCategories))]},
				Rating:     rating,
				Visibility: visibility,
				CreatedAt:  time.Now().Add(-time.Duration(r.Intn(60*24)) * time.Hour),
			}
			if err := db.Create(&interaction).Error; err != nil {
				return fmt.Errorf("failed to seed interaction: %w", err)
			}
		}
	}
	log.Println("Seeded 20 users with interaction history.")

	return nil
}
