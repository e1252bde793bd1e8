package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinebook/internal/layouts"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shows"
	"cinebook/internal/theaters"
	"cinebook/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cinebook Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payments",
		"booking_seats",
		"bookings",
		"booked_seats",
		"shows",
		"filled_times",
		"screens",
		"seats",
		"seat_layouts",
		"theaters",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	layoutID, err := s.SeedLayout(userIDs["vendor"])
	if err != nil {
		return fmt.Errorf("failed to seed layout: %w", err)
	}

	screenIDs, err := s.SeedTheaters(userIDs["vendor"], layoutID)
	if err != nil {
		return fmt.Errorf("failed to seed theaters: %w", err)
	}

	if err := s.SeedShows(userIDs["vendor"], screenIDs); err != nil {
		return fmt.Errorf("failed to seed shows: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 1 admin, 1 vendor and 2 regular users.
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Password "qwerty" for all seeded accounts
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@cinebook.dev", users.RoleAdmin},
		{"vendor", "Vishal", "Rao", "vendor@cinebook.dev", users.RoleVendor},
		{"user1", "Asha", "Iyer", "asha@cinebook.dev", users.RoleUser},
		{"user2", "Rohan", "Mehta", "rohan@cinebook.dev", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedLayout creates one 5x8 layout: a VIP back row, a premium row and
// three regular rows, with two unavailable seats around the aisle.
func (s *Seeder) SeedLayout(vendorID uuid.UUID) (uuid.UUID, error) {
	fmt.Println("  🪑 Seeding seat layout...")

	layout := layouts.SeatLayout{
		ID:           uuid.New(),
		VendorID:     vendorID,
		Name:         "Standard 40",
		RowCount:     5,
		ColumnCount:  8,
		PriceRegular: 150,
		PricePremium: 250,
		PriceVIP:     400,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	rows := "ABCDE"
	capacity := 0
	var seats []layouts.Seat
	for r := 0; r < layout.RowCount; r++ {
		for c := 0; c < layout.ColumnCount; c++ {
			number := fmt.Sprintf("%c%d", rows[r], c+1)
			seatType := layouts.SeatTypeRegular
			switch {
			case r == 4:
				seatType = layouts.SeatTypeVIP
			case r == 3:
				seatType = layouts.SeatTypePremium
			case r == 0 && (c == 0 || c == 7):
				seatType = layouts.SeatTypeUnavailable
			}
			price := layout.PriceFor(seatType)
			if seatType != layouts.SeatTypeUnavailable {
				capacity++
			}
			seats = append(seats, layouts.Seat{
				ID:        uuid.New(),
				LayoutID:  layout.ID,
				Number:    number,
				Type:      seatType,
				Row:       r,
				Col:       c,
				Price:     price,
				CreatedAt: time.Now(),
			})
		}
	}
	layout.Capacity = capacity

	if err := s.db.PostgreSQL.Create(&layout).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create layout: %w", err)
	}
	if err := s.db.PostgreSQL.Create(&seats).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create seats: %w", err)
	}
	fmt.Printf("    ✅ Created layout: %s (%d seats, capacity %d)\n", layout.Name, len(seats), layout.Capacity)

	return layout.ID, nil
}

// SeedTheaters creates one theater with two screens on the same layout.
func (s *Seeder) SeedTheaters(vendorID, layoutID uuid.UUID) ([]uuid.UUID, error) {
	fmt.Println("  🎭 Seeding theaters and screens...")

	theater := theaters.Theater{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Name:      "Galaxy Multiplex",
		City:      "Mumbai",
		Address:   "12 Marine Drive",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.PostgreSQL.Create(&theater).Error; err != nil {
		return nil, fmt.Errorf("failed to create theater: %w", err)
	}
	fmt.Printf("    ✅ Created theater: %s (%s)\n", theater.Name, theater.City)

	var screenIDs []uuid.UUID
	for _, name := range []string{"Screen 1", "Screen 2"} {
		screen := theaters.Screen{
			ID:        uuid.New(),
			TheaterID: theater.ID,
			LayoutID:  layoutID,
			Name:      name,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.db.PostgreSQL.Create(&screen).Error; err != nil {
			return nil, fmt.Errorf("failed to create screen %s: %w", name, err)
		}
		screenIDs = append(screenIDs, screen.ID)
		fmt.Printf("    ✅ Created screen: %s\n", screen.Name)
	}

	return screenIDs, nil
}

// SeedShows creates scheduled shows on each screen, with the matching
// filled_times slots a normal show creation would claim.
func (s *Seeder) SeedShows(vendorID uuid.UUID, screenIDs []uuid.UUID) error {
	fmt.Println("  🎬 Seeding shows...")

	movies := []struct {
		title    string
		language string
		override int
	}{
		{"Interstellar Voyager", "English", 100},
		{"Monsoon Melody", "Hindi", 120},
	}

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	for i, screenID := range screenIDs {
		movie := movies[i%len(movies)]
		show := shows.Show{
			ID:                   uuid.New(),
			ScreenID:             screenID,
			VendorID:             vendorID,
			MovieID:              uuid.New(),
			MovieTitle:           movie.title,
			Language:             movie.language,
			StartTime:            start,
			EndTime:              start.Add(3 * time.Hour),
			Status:               shows.StatusScheduled,
			PriceOverridePercent: movie.override,
			CreatedAt:            time.Now(),
			UpdatedAt:            time.Now(),
		}
		if err := s.db.PostgreSQL.Create(&show).Error; err != nil {
			return fmt.Errorf("failed to create show %s: %w", movie.title, err)
		}

		slot := theaters.FilledTime{
			ID:        uuid.New(),
			ScreenID:  screenID,
			ShowID:    show.ID,
			StartTime: show.StartTime,
			EndTime:   show.EndTime,
			CreatedAt: time.Now(),
		}
		if err := s.db.PostgreSQL.Create(&slot).Error; err != nil {
			return fmt.Errorf("failed to reserve slot for %s: %w", movie.title, err)
		}
		fmt.Printf("    ✅ Created show: %s on screen %d at %s\n", movie.title, i+1, show.StartTime.Format(time.RFC3339))
	}

	return nil
}
