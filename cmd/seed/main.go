package main

import (
	"context"
	"log"
	"math/rand"

	"playerhire/internal/config"
	"playerhire/internal/database"
	"playerhire/internal/domain"
	"playerhire/internal/modules/leasing"
	jwtsvc "playerhire/internal/pkg/jwt"
	"playerhire/internal/pkg/logger"
	"playerhire/internal/repository"
)

type seedPlayer struct {
	owner int64
	domain.DescriptiveFields
}

var players = []seedPlayer{
	{1001, domain.DescriptiveFields{Username: "NightOwl", GameName: "Valorant", Rank: "Immortal", Role: "Duelist", Server: "EU", PricePerHour: 18, Description: "Aggressive entry, fluent in callouts"}},
	{1002, domain.DescriptiveFields{Username: "Frostbyte", GameName: "Valorant", Rank: "Diamond", Role: "Controller", Server: "EU", PricePerHour: 12}},
	{1003, domain.DescriptiveFields{Username: "Kestrel", GameName: "Dota 2", Rank: "Divine", Role: "Support", Server: "EU West", PricePerHour: 15, Description: "Position 5, warding and lane control"}},
	{1004, domain.DescriptiveFields{Username: "Tallgrass", GameName: "League of Legends", Rank: "Master", Role: "Jungle", Server: "EUW", PricePerHour: 20}},
	{1005, domain.DescriptiveFields{Username: "Quasar", GameName: "Counter-Strike 2", Rank: "Global Elite", Role: "AWPer", Server: "EU", PricePerHour: 22}},
	{1006, domain.DescriptiveFields{Username: "Moss", GameName: "League of Legends", Rank: "Diamond", Role: "Support", Server: "NA", PricePerHour: 9.5}},
}

const (
	hirerID = 2001
	adminID = 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	logg := logger.New(logger.Config{Level: "warn", Encoding: "console"})

	db, err := database.Connect(cfg.DatabaseURL, logg)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	if err := db.Exec("DELETE FROM player_listings").Error; err != nil {
		log.Fatal("cleanup failed:", err)
	}

	svc := leasing.NewService(repository.NewPlayerListingRepository(db), nil, nil, nil, logg)
	ctx := context.Background()
	hirer := leasing.Actor{UserID: hirerID, Role: domain.RoleClient}

	log.Println("Creating player listings...")
	for i, p := range players {
		l, err := svc.Create(ctx, p.owner, p.DescriptiveFields)
		if err != nil {
			log.Fatalf("create %s: %v", p.Username, err)
		}

		ratings := 1 + rand.Intn(3)
		for r := 0; r < ratings; r++ {
			if _, err := svc.Rate(ctx, l.ID, hirer, float64(3+rand.Intn(3))); err != nil {
				log.Fatalf("rate %s: %v", p.Username, err)
			}
		}

		// every other listing starts out hired
		if i%2 == 1 {
			if _, err := svc.Hire(ctx, l.ID, hirer, 1+rand.Intn(4)); err != nil {
				log.Fatalf("hire %s: %v", p.Username, err)
			}
		}
		log.Printf("  %s (%s) -> %s", p.Username, p.GameName, l.ID)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).WithIssuer(cfg.JWTIssuer)
	printToken(j, "admin", adminID, domain.RoleAdmin)
	printToken(j, "hirer", hirerID, domain.RoleClient)
	printToken(j, "owner", players[0].owner, domain.RoleClient)

	log.Println("Seed completed.")
}

func printToken(j *jwtsvc.Service, label string, userID int64, role domain.UserRole) {
	tok, err := j.GenerateToken(userID, string(role))
	if err != nil {
		log.Fatalf("token for %s: %v", label, err)
	}
	log.Printf("%s token (user %d): %s", label, userID, tok)
}
