package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/ferdianp/subtrack/internal/config"
	"github.com/ferdianp/subtrack/internal/repository"
	"github.com/ferdianp/subtrack/internal/service"
)

func main() {
	log.Println("Starting subscription scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	subRepo := repository.NewSubscriptionRepository(db)
	subService := service.NewSubscriptionService(subRepo, nil, cfg)
	reminderService := service.NewReminderService(subRepo)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	if err := setupCronJobs(c, cfg, subService, reminderService); err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, subs *service.SubscriptionService, reminders *service.ReminderService) error {
	// Daily refresh of cached next billing dates
	_, err := c.AddFunc(cfg.Scheduler.RefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		refreshed, err := subs.RefreshAllNextBillingDates(ctx)
		if err != nil {
			log.Printf("Next billing date refresh failed: %v", err)
			return
		}
		log.Printf("Next billing date refresh complete, %d subscription(s) updated", refreshed)
	})
	if err != nil {
		return err
	}

	// Daily reminder scan; the digest is logged for the delivery pipeline
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		digest, err := reminders.CheckReminders(ctx)
		if err != nil {
			log.Printf("Reminder scan failed: %v", err)
			return
		}

		if digest.Total() == 0 {
			log.Println("Reminder scan complete, nothing due")
			return
		}

		log.Printf("Reminder scan complete: %d urgent, %d soon, %d upcoming",
			len(digest.Urgent), len(digest.Soon), len(digest.Upcoming))
		for _, entry := range digest.Urgent {
			log.Printf("  urgent: %s renews in %d day(s) on %s",
				entry.Name, entry.DaysUntilRenewal, entry.NextBillingDate.Format("2006-01-02"))
		}
	})
	return err
}
