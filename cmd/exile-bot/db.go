package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"exile-bot/internal/models"
	"exile-bot/internal/storage"

	cli "github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

var dbCmd = &cli.Command{
	Name:  "db",
	Usage: "manage the sanction database",
	Subcommands: []*cli.Command{
		{
			Name:   "migrate",
			Usage:  "create or update the sanction table",
			Action: withDB(migrateDatabase),
		},
		{
			Name:   "status",
			Usage:  "show whether the sanction table exists and how many records it holds",
			Action: withDB(checkStatus),
		},
		{
			Name:  "reset",
			Usage: "drop and recreate the sanction table, deleting every record",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "yes",
					Usage: "do not ask for confirmation",
				},
			},
			Action: withDB(resetDatabase),
		},
	},
}

func withDB(fn func(cctx *cli.Context, db *gorm.DB) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		db, err := storage.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer storage.Close(db)
		return fn(cctx, db)
	}
}

func migrateDatabase(cctx *cli.Context, db *gorm.DB) error {
	fmt.Println("Migrating database...")
	if err := storage.NewSanctionRepository(db).MigrateTable(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("Migration completed successfully")
	return nil
}

func resetDatabase(cctx *cli.Context, db *gorm.DB) error {
	fmt.Println("Resetting database...")

	if !cctx.Bool("yes") {
		fmt.Print("WARNING: This will delete all sanctions! Are you sure? (y/N): ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "Y" {
			return fmt.Errorf("operation cancelled by user")
		}
	}

	if err := storage.NewSanctionRepository(db).Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Println("Database reset completed successfully")
	return nil
}

func checkStatus(cctx *cli.Context, db *gorm.DB) error {
	fmt.Println("Checking database status...")

	if !db.Migrator().HasTable(&models.SanctionRecord{}) {
		fmt.Println("❌ exiled_users table does not exist")
		return nil
	}
	fmt.Println("✅ exiled_users table exists")

	n, err := storage.NewSanctionRepository(db).Count(cctx.Context)
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	fmt.Printf("   - Contains %d records\n", n)
	return nil
}
