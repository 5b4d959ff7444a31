package main

import (
	"chat-pulse/domain"
	"chat-pulse/repositories"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Config for the message seeder, a dev tool that fills the store with
// randomized traffic over the trailing 24 hours so the dashboard has
// something to show.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	Count          int    `env:"SEED_COUNT,default=500"`
	Room           int    `env:"SEED_ROOM,default=1"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

var authors = []string{"alice", "bob", "clara", "dave", "erin"}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	slogger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger directly: the seeder backdates timestamps, which the
	// ingest endpoint deliberately does not allow.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slogger, nil)

	// 3. Spread messages over the window, denser towards now.
	now := time.Now().UTC()
	for i := 0; i < config.Count; i++ {
		back := time.Duration(rand.ExpFloat64() * float64(8*time.Hour))
		if back > 24*time.Hour {
			back = time.Duration(rand.Int63n(int64(24 * time.Hour)))
		}
		at := now.Add(-back)
		author := authors[rand.Intn(len(authors))]
		message := domain.NewMessage(config.Room, author, fmt.Sprintf("seed message %d", i), false, at)
		if err := repository.StoreMessage(toDiskMessage(message)); err != nil {
			log.Fatalf("Failed to store message: %v", err)
		}
	}

	fmt.Printf("Seeded %d messages in room %d\n", config.Count, config.Room)
}

func toDiskMessage(m domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:      m.ID,
		Room:    m.Room,
		Author:  m.Author,
		Content: m.Content,
		At:      m.At,
	}
}
