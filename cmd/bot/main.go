package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	walog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"

	"github.com/fardannozami/quest-tracker/internal/app/flash"
	"github.com/fardannozami/quest-tracker/internal/app/usecase"
	"github.com/fardannozami/quest-tracker/internal/clock"
	"github.com/fardannozami/quest-tracker/internal/config"
	"github.com/fardannozami/quest-tracker/internal/domain"
	"github.com/fardannozami/quest-tracker/internal/infra/file"
	"github.com/fardannozami/quest-tracker/internal/infra/sqlite"
	"github.com/fardannozami/quest-tracker/internal/infra/wa"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger := walog.Stdout("Client", cfg.LogLevel, true)

	// 3. Database & State Store
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	// Enable WAL mode and busy timeout to avoid "database is locked" errors
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStateStore(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	lids := sqlite.NewLIDResolver(db)

	// 4. Tracker & Use Cases
	flasher := flash.New(cfg.FlashDuration)
	defer flasher.Stop()

	tracker := usecase.NewTrackerUsecase(store, usecase.TrackerOptions{
		Key:      cfg.StateKey,
		Catalog:  cfg.Catalog,
		Clock:    clock.Real{},
		Location: cfg.Location,
		Flash:    flasher,
		Logger:   logger.Sub("Tracker"),
	})
	progress, err := tracker.Load(ctx)
	switch {
	case errors.Is(err, usecase.ErrPersist):
		log.Printf("Failed to save initial state: %v", err)
	case err != nil:
		log.Fatalf("Failed to load quest state: %v", err)
	}
	log.Printf("Loaded quest state: level %d, %d XP, streak %d, %d/%d today",
		progress.State.Level, progress.State.XP, progress.State.Streak, progress.Done, progress.Total)

	go tracker.RunRolloverLoop(ctx, cfg.RolloverInterval)

	toggleUC := usecase.NewToggleQuestUsecase(tracker)
	statusUC := usecase.NewGetStatusUsecase(tracker)
	handleMessageUC := usecase.NewHandleMessageUsecase(toggleUC, statusUC)

	// 5. WhatsApp Service
	waService := wa.NewService(cfg.SQLitePath, logger)

	// 6. Register Message Handler
	waService.SetMessageHandler(func(ctx context.Context, msg wa.IncomingMessage) {
		if cfg.GroupID != "" && msg.Chat.String() != cfg.GroupID {
			return
		}
		if msg.IsFromMe {
			return
		}

		// Resolve LID to phone number so OWNER_PHONE matches either form
		sender := msg.Sender.User
		if msg.IsLID() {
			sender = lids.ResolveLIDToPhone(ctx, sender)
		}
		if cfg.OwnerPhone != "" && sender != cfg.OwnerPhone {
			return
		}

		log.Printf("Message from %s (%s): %s", msg.PushName, sender, msg.Text)

		response, err := handleMessageUC.Execute(ctx, msg.Text)
		if err != nil {
			// A failed save still produces a reply; the state is kept in memory.
			log.Printf("Error handling message: %v", err)
		}
		if response == "" {
			return
		}

		if err := waService.Reply(ctx, msg.Chat, response, replyDelay(cfg), cfg.ShowTyping); err != nil {
			log.Printf("Failed to send response: %v", err)
		}
	})

	// 7. Initialize Client (DB, Device, etc) and log in
	if err := waService.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize WhatsApp service: %v", err)
	}
	if err := waService.Login(ctx, cfg.BotPhone); err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}

	log.Println("Bot is running... Press Ctrl+C to exit.")

	// 8. Wait for OS Signal
	<-ctx.Done()

	log.Println("Shutting down...")
	waService.Disconnect()
}

func openStateStore(ctx context.Context, cfg *config.Settings, db *sql.DB) (domain.StateStore, error) {
	if cfg.StoreDriver == config.DriverFile {
		repo, err := file.NewStateRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo := sqlite.NewStateRepository(db)
	if err := repo.InitTable(ctx); err != nil {
		return nil, fmt.Errorf("init kv_store table: %w", err)
	}
	return repo, nil
}

// replyDelay picks a random delay between min and max to appear more human-like.
func replyDelay(cfg *config.Settings) time.Duration {
	delayMs := cfg.ReplyDelayMinMs
	if cfg.ReplyDelayMaxMs > cfg.ReplyDelayMinMs {
		delayMs = cfg.ReplyDelayMinMs + rand.Intn(cfg.ReplyDelayMaxMs-cfg.ReplyDelayMinMs+1)
	}
	return time.Duration(delayMs) * time.Millisecond
}
