package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{"approval_steps", "approval_rules", "expenses", "users", "companies"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		companyName := "Acme Corp"
		var companyID int64
		row := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row()
		if err := row.Scan(&companyID); err != nil {
			if err := db.Exec("INSERT INTO companies (name, currency, created_at, updated_at) VALUES (?, 'USD', now(), now())", companyName).Error; err != nil {
				log.Fatalf("failed to insert company: %v", err)
			}
			if err := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row().Scan(&companyID); err != nil {
				log.Fatalf("failed to lookup company id: %v", err)
			}
			fmt.Println("Seeded company:", companyName)
		}

		seedUser := func(email, name, role string, managerID *int64) int64 {
			var id int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
				fmt.Println("user already exists:", email)
				return id
			}
			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, company_id, manager_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
				email, name, string(hash), role, companyID, managerID,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", email, err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
				log.Fatalf("failed to lookup user id %s: %v", email, err)
			}
			fmt.Println("Seeded user:", email)
			return id
		}

		adminID := seedUser("admin@acme.test", "Ada Admin", "admin", nil)
		managerID := seedUser("manager@acme.test", "Morgan Manager", "manager", &adminID)
		seedUser("employee@acme.test", "Evan Employee", "employee", &managerID)

		var ruleExists int
		if err := db.Raw("SELECT 1 FROM approval_rules WHERE company_id = ?", companyID).Row().Scan(&ruleExists); err != nil {
			if err := db.Exec(
				"INSERT INTO approval_rules (company_id, rule_type, percentage, created_at, updated_at) VALUES (?, 'percentage', 100, now(), now())",
				companyID,
			).Error; err != nil {
				log.Fatalf("failed to insert approval rule: %v", err)
			}
			fmt.Println("Seeded percentage approval rule for company:", companyName)
		}

		fmt.Println("Seeding complete. Default password for all users:", password)
	},
}
