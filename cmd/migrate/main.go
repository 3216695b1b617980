package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nutriflow/backend/internal/database"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the .sql migrations")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	migrator := database.NewMigrator(db, *dir)

	if *rollback {
		name, err := migrator.Rollback()
		if err != nil {
			log.Fatalf("failed to rollback: %v", err)
		}
		log.Printf("Rolled back %s", name)
		return
	}

	applied, err := migrator.Up()
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	if len(applied) == 0 {
		log.Println("Database is up to date")
		return
	}
	for _, name := range applied {
		log.Printf("Applied %s", name)
	}
}
