package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/datastore"
	"github.com/joho/godotenv"
	"github.com/tckz/go-ticket-playground/internal/log"
	"github.com/tckz/go-ticket-playground/internal/ticket"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optLogLevel  = flag.String("log-level", "info", "info|warn|error")
	optNameSpace = flag.String("ns", "", "namespace")
	optKind      = flag.String("kind", "counter", "datastore kind")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pjID := os.Getenv("PROJECT_ID")

	cl, err := datastore.NewClient(context.Background(), pjID)
	if err != nil {
		logger.Fatalf("*** datastore.NewClient: %v", err)
	}
	defer cl.Close()

	q := datastore.NewQuery(*optKind).Namespace(*optNameSpace)
	it := cl.Run(ctx, q)
	for {
		var rec ticket.CounterEntity
		key, err := it.Next(&rec)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.Errorf("Next: %v", err)
			return
		}
		fmt.Printf("Key=%v, LastTicket=%d, UpdatedAt=%s\n", key, rec.LastTicket, rec.UpdatedAt)
	}

	logger.Info("done")
}
