// seed inserts the sample administrator account and a handful of sample
// products for local testing. Idempotent: skips everything if the admin
// account already exists.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"freshbonds/backend/internal/config"
	"freshbonds/backend/internal/db"
	productdomain "freshbonds/backend/internal/product/domain"
	productrepo "freshbonds/backend/internal/product/repository"
	"freshbonds/backend/internal/security"
	userdomain "freshbonds/backend/internal/user/domain"
	userrepo "freshbonds/backend/internal/user/repository"
)

const (
	adminEmail    = "ireshek@gmail.com"
	adminPassword = "Iresh@1998"
)

type sample struct {
	name        string
	description string
	price       float64
	category    string
	image       string
	organic     bool
	quantity    string
	unit        string
}

var samples = []sample{
	{
		name:        "Carrot",
		description: "A versatile orange root vegetable, rich in beta-carotene. Eaten raw or cooked, in sweet and savory dishes alike, and keeps in the refrigerator for several weeks.",
		price:       200,
		category:    "Vegetables",
		image:       "https://images.pexels.com/photos/143133/pexels-photo-143133.jpeg?auto=compress&cs=tinysrgb&w=800",
		organic:     true,
		quantity:    "1",
		unit:        "kg",
	},
	{
		name:        "Red Rice",
		description: "Traditional Sri Lankan red rice, unpolished and nutty. Grown without synthetic fertilizer on paddy fields in the Kurunegala district.",
		price:       350,
		category:    "Grains & Cereals",
		image:       "https://images.pexels.com/photos/4110251/pexels-photo-4110251.jpeg?auto=compress&cs=tinysrgb&w=800",
		organic:     true,
		quantity:    "5",
		unit:        "kg",
	},
	{
		name:        "King Coconut",
		description: "Fresh king coconuts picked the same week. Naturally sweet water, best chilled. Sold by the dozen.",
		price:       900,
		category:    "Fruits",
		image:       "https://images.pexels.com/photos/322483/pexels-photo-322483.jpeg?auto=compress&cs=tinysrgb&w=800",
		organic:     false,
		quantity:    "1",
		unit:        "dozen",
	},
	{
		name:        "Gotukola Bunch",
		description: "Pennywort greens for sambol and mallum, harvested in the morning and bundled by hand. Keeps two to three days refrigerated.",
		price:       80,
		category:    "Herbs",
		image:       "https://images.pexels.com/photos/1656663/pexels-photo-1656663.jpeg?auto=compress&cs=tinysrgb&w=800",
		organic:     true,
		quantity:    "1",
		unit:        "bunch",
	},
	{
		name:        "Village Eggs",
		description: "Free-range village chicken eggs, collected daily. Shell color varies; size is medium to large.",
		price:       650,
		category:    "Dairy & Eggs",
		image:       "https://images.pexels.com/photos/162712/egg-white-food-protein-162712.jpeg?auto=compress&cs=tinysrgb&w=800",
		organic:     false,
		quantity:    "30",
		unit:        "count",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	users := userrepo.NewPostgresRepository(pool)
	products := productrepo.NewPostgresRepository(pool)

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		log.Printf("Seed already applied (%s exists). Skipping.", adminEmail)
		os.Exit(0)
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		log.Fatalf("seed check: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &userdomain.User{
		ID:           uuid.New().String(),
		Name:         "Iresh Ekanayaka",
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         userdomain.RoleAdmin,
		Location:     "Kurunegala, Sri Lanka",
		FarmName:     "Athugalpura",
		Mobile:       "0766025562",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}

	for _, s := range samples {
		p := &productdomain.Product{
			ID:             uuid.New().String(),
			Name:           s.name,
			Description:    s.description,
			Price:          s.price,
			Category:       s.category,
			Image:          s.image,
			FarmerID:       admin.ID,
			FarmerName:     admin.Name,
			FarmerLocation: "Kobeigane",
			FarmerMobile:   admin.Mobile,
			InStock:        true,
			IsVisible:      true,
			IsApproved:     true,
			Organic:        s.organic,
			HarvestDate:    now.AddDate(0, 0, -3),
			Quantity:       s.quantity,
			Unit:           s.unit,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := products.Create(ctx, p); err != nil {
			log.Fatalf("create product %q: %v", s.name, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, adminPassword)
	fmt.Printf("Products seeded: %d\n", len(samples))
}
