// Command main recomputes denormalized counters from their source
// collections. Run it after a crash or on a schedule to repair drift
// between edge tables and the counters stored on users, posts, and
// comments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"tidepool/internal/bootstrap"
	"tidepool/internal/config"
	"tidepool/internal/repository"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort if reconciliation runs longer than this")
	asJSON := flag.Bool("json", false, "Print the drift report as JSON")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := repository.NewCounterReconciler(db).Run(ctx)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		return
	}

	log.Printf("post likes repaired:      %d", report.PostLikes)
	log.Printf("post comments repaired:   %d", report.PostComments)
	log.Printf("comment likes repaired:   %d", report.CommentLikes)
	log.Printf("comment replies repaired: %d", report.CommentReplies)
	log.Printf("user followers repaired:  %d", report.UserFollowers)
	log.Printf("user following repaired:  %d", report.UserFollowing)
	if report.Total() == 0 {
		log.Println("no drift found")
	}
}
