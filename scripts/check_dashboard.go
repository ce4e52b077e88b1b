//go:build ignore

// Prints the dashboard snapshot straight from the database, bypassing HTTP.
//
//	go run scripts/check_dashboard.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/config"
	"github.com/boostmysites25/zippty-backend/internal/db"
	"github.com/boostmysites25/zippty-backend/internal/repository"
	"github.com/boostmysites25/zippty-backend/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		log.Printf("Warning: .env.local not found: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI not set")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "zippty"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, database, err := db.Open(ctx, db.Options{URI: mongoURI, Database: dbName})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	cfg := config.DefaultConfig().Dashboard
	store := repository.NewStore(database, nil)
	dash := service.NewDashboardService(store, store, cfg, nil)

	snap, err := dash.BuildSnapshot(ctx, cfg.DefaultSalesMonths)
	if err != nil {
		log.Fatalf("Failed to build snapshot: %v", err)
	}

	fmt.Printf("Dashboard (last %d days vs the %d before)\n\n", cfg.WindowDays, cfg.WindowDays)
	row := "  %-9s %12.2f %12.2f %9.2f%%\n"
	fmt.Printf("  %-9s %12s %12s %10s\n", "", "current", "previous", "change")
	fmt.Printf(row, "orders", snap.Orders.Current, snap.Orders.Previous, snap.Orders.PercentageChange)
	fmt.Printf(row, "revenue", snap.Revenue.Current, snap.Revenue.Previous, snap.Revenue.PercentageChange)
	fmt.Printf(row, "products", snap.Products.Current, snap.Products.Previous, snap.Products.PercentageChange)
	fmt.Printf(row, "users", snap.Users.Current, snap.Users.Previous, snap.Users.PercentageChange)

	fmt.Println()
	fmt.Println("Sales by month:")
	for _, b := range snap.Sales {
		fmt.Printf("  %s  %10.2f  (%d orders)\n", b.PeriodKey, b.TotalSales, b.OrderCount)
	}
}
