package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groking122/readingcompanion-sub001/internal/config"
	"github.com/groking122/readingcompanion-sub001/internal/database"
	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/entrypoint"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
	"github.com/groking122/readingcompanion-sub001/internal/review"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]

	switch command {
	case "drain":
		if err := runDrain(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "queue-status":
		if err := runQueueStatus(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "due":
		if err := runDueCount(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// cliSubmitter routes drained attempts through the same dedup and
// scheduling path the server uses.
type cliSubmitter struct {
	service *review.Service
}

func (s *cliSubmitter) Submit(ctx context.Context, attempt entities.ReviewAttempt) error {
	_, err := s.service.Submit(ctx, attempt)
	return err
}

// runDrain submits every queued attempt to the scheduling service and
// prints the outcome.
func runDrain() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := queue.NewStore(queue.StorePathFor(cfg.Database.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	service := review.NewService(review.NewRepository(db.DB))
	q := queue.New(store, &cliSubmitter{service: service}, nil)

	result, err := q.Drain(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Queue drained: %d synced, %d failed\n", result.Synced, result.Failed)
	return nil
}

// runQueueStatus prints the offline queue contents without draining it.
func runQueueStatus() error {
	cfg := config.NewConfig()

	store, err := queue.NewStore(queue.StorePathFor(cfg.Database.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ListAll()
	if err != nil {
		return err
	}

	fmt.Printf("Offline queue: %d entr(ies)\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s  vocab=%d quality=%d status=%s attempts=%d\n",
			e.LocalID, e.VocabularyID, e.Quality, e.Status, e.SubmissionAttempts)
	}
	return nil
}

// runDueCount prints how many cards are currently due.
func runDueCount() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	service := review.NewService(review.NewRepository(db.DB))

	count, err := service.DueCount(0)
	if err != nil {
		return err
	}

	fmt.Printf("Cards due for review: %d\n", count)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  drain         Submit all queued offline attempts\n")
	fmt.Fprintf(os.Stderr, "  queue-status  Show the durable offline queue contents\n")
	fmt.Fprintf(os.Stderr, "  due           Show the number of cards currently due\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
