// Tailtown - Pet Business Management Platform
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/tailtown/platform/internal/api"
	"github.com/tailtown/platform/internal/audit"
	"github.com/tailtown/platform/internal/auth"
	"github.com/tailtown/platform/internal/config"
	"github.com/tailtown/platform/internal/database"
	"github.com/tailtown/platform/internal/export"
	"github.com/tailtown/platform/internal/governance"
	"github.com/tailtown/platform/internal/models"
	"github.com/tailtown/platform/internal/retention"
	"github.com/tailtown/platform/internal/scheduler"
	"github.com/tailtown/platform/internal/schemaver"

	"gorm.io/gorm"
)

var Version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		runCLI()
		return
	}
	startServer()
}

func startServer() {
	fmt.Printf("Tailtown %s - Starting...\n", Version)

	cfg := loadConfig()
	db := connectDB(cfg)
	log.Println("Database connected")

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	configService := config.NewConfigService(db)
	recorder := audit.NewRecorder(db)

	govService := governance.NewService(db, recorder, governance.Config{
		RetentionYears: configService.RetentionYears(),
	})
	exportService := export.NewService(db, govService, recorder)
	retentionService := retention.NewService(db, recorder, retention.Config{
		RetentionYears: configService.RetentionYears(),
		GraceDays:      configService.GraceDays(),
		BatchCap:       configService.PurgeBatchCap(),
	})
	registry := schemaver.NewRegistry(db)
	controller := schemaver.NewController(db, registry, recorder)
	jwtService := auth.NewJWTService(cfg.Server.JWTSecret)

	sched := scheduler.NewScheduler(retentionService, scheduler.Config{
		Enabled:   cfg.Scheduler.Enabled,
		SweepTime: cfg.Scheduler.SweepTime,
		PurgeDay:  cfg.Scheduler.PurgeDay,
		PurgeTime: cfg.Scheduler.PurgeTime,
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("Scheduler failed to start: %v", err)
	}
	defer sched.Stop()

	handler := api.NewHandler(govService, exportService, recorder, registry, controller, retentionService, jwtService)
	adminHandler := api.NewAdminHandler(db)
	router := api.SetupRouter(handler, adminHandler)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig() config.Bootstrap {
	configPath := os.Getenv("TAILTOWN_CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}
	cfg, err := config.LoadBootstrap(configPath)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	return cfg
}

func connectDB(cfg config.Bootstrap) *gorm.DB {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

// CLI
func runCLI() {
	cmd := os.Args[1]
	switch cmd {
	case "serve":
		startServer()
	case "migrate":
		cfg := loadConfig()
		db := connectDB(cfg)
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations complete")
	case "tenant":
		runTenantCmd()
	case "user":
		runUserCmd()
	case "retention-run":
		runRetentionCmd()
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: tailtown <command>
Commands:
  serve                         Start server
  migrate                       Run migrations
  tenant list                   List tenants
  tenant create --code= --name= Create tenant
  user list --tenant=           List users
  user create --tenant= --email= --password= Create user
  retention-run [sweep|purge]   Run a retention job immediately`)
}

func runTenantCmd() {
	if len(os.Args) < 3 {
		printUsage()
		return
	}
	db := connectDB(loadConfig())
	switch os.Args[2] {
	case "list":
		var tenants []models.Tenant
		db.Find(&tenants)
		for _, t := range tenants {
			fmt.Printf("%s - %s\n", t.Code, t.Name)
		}
	case "create":
		code, name := getFlag("--code"), getFlag("--name")
		if code == "" || name == "" {
			printUsage()
			return
		}
		if err := db.Create(&models.Tenant{Code: code, Name: name, IsActive: true}).Error; err != nil {
			log.Fatalf("Failed: %v", err)
		}
		fmt.Printf("Tenant created: %s\n", code)
	case "delete":
		code := getFlag("--code")
		if code == "" {
			printUsage()
			return
		}
		db.Where("code = ?", code).Delete(&models.Tenant{})
		fmt.Printf("Tenant deleted: %s\n", code)
	}
}

func runUserCmd() {
	if len(os.Args) < 3 {
		printUsage()
		return
	}
	db := connectDB(loadConfig())
	switch os.Args[2] {
	case "list":
		tenantCode := getFlag("--tenant")
		if tenantCode == "" {
			printUsage()
			return
		}
		var tenant models.Tenant
		if db.Where("code = ?", tenantCode).First(&tenant).Error != nil {
			log.Fatal("Tenant not found")
		}
		var users []models.User
		db.Where("tenant_id = ?", tenant.ID).Find(&users)
		for _, u := range users {
			fmt.Printf("%s <%s>\n", u.FirstName+" "+u.LastName, u.Email)
		}
	case "create":
		tenantCode := getFlag("--tenant")
		email := getFlag("--email")
		password := getFlag("--password")
		if tenantCode == "" || email == "" || password == "" {
			printUsage()
			return
		}
		var tenant models.Tenant
		if db.Where("code = ?", tenantCode).First(&tenant).Error != nil {
			log.Fatal("Tenant not found")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("Failed: %v", err)
		}
		if err := db.Create(&models.User{
			TenantID:     tenant.ID,
			Email:        email,
			PasswordHash: hash,
			FirstName:    getFlag("--first"),
			LastName:     getFlag("--last"),
			IsActive:     true,
		}).Error; err != nil {
			log.Fatalf("Failed: %v", err)
		}
		fmt.Printf("User created: %s\n", email)
	}
}

func runRetentionCmd() {
	job := "purge"
	if len(os.Args) > 2 {
		job = os.Args[2]
	}

	db := connectDB(loadConfig())
	configService := config.NewConfigService(db)
	recorder := audit.NewRecorder(db)
	retentionService := retention.NewService(db, recorder, retention.Config{
		RetentionYears: configService.RetentionYears(),
		GraceDays:      configService.GraceDays(),
		BatchCap:       configService.PurgeBatchCap(),
	})

	switch job {
	case "sweep":
		result, err := retentionService.RunArchiveSweep()
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		printJSON(result)
	case "purge":
		result := retentionService.RunPermanentDeletionJob()
		printJSON(result)
		if !result.Success {
			os.Exit(1)
		}
	default:
		printUsage()
	}
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func getFlag(name string) string {
	prefix := name + "="
	for _, arg := range os.Args {
		if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
			return arg[len(prefix):]
		}
	}
	return ""
}
