package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/go-ticket-playground/internal/log"
	"github.com/tckz/go-ticket-playground/internal/ticket"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optLogLevel   = flag.String("log-level", "info", "info|warn|error")
	optCount      = flag.Int("n", 1, "Number of tickets to draw")
	optBackend    = flag.String("backend", "local", "local|redis|datastore")
	optRedis      = flag.String("redis", "", "addr:port of redis")
	optCounterKey = flag.String("counter-key", "ticket-counter", "key of redis")
	optKind       = flag.String("kind", "counter", "datastore kind")
	optName       = flag.String("name", "", "named key of the counter")
	optNameSpace  = flag.String("ns", "", "namespace")
)

func init() {
	godotenv.Load()

	flag.Parse()

	// Tickets go to stdout one per line; console logs on stderr keep the
	// two streams apart.
	logger = log.Must(log.NewLogger(
		log.WithLogLevel(*optLogLevel),
		log.WithEncoding("console"),
	)).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optCount <= 0 {
		logger.Fatalf("*** -n must be positive.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, cleanup, err := newDispenser(ctx)
	if err != nil {
		logger.Fatalf("*** newDispenser: %v", err)
	}
	defer cleanup()

	for i := 0; i < *optCount; i++ {
		n, err := d.Draw(ctx)
		if err != nil {
			logger.Fatalf("*** Draw: %v", err)
		}
		fmt.Println(n)
	}

	last, err := d.Last(ctx)
	if err != nil {
		logger.Fatalf("*** Last: %v", err)
	}
	logger.Infof("drawn=%s, last=%s", humanize.Comma(int64(*optCount)), humanize.Comma(last))
}

func newDispenser(ctx context.Context) (ticket.Dispenser, func(), error) {
	switch *optBackend {
	case "local":
		return ticket.NewLocal(), func() {}, nil
	case "redis":
		if *optRedis == "" {
			return nil, nil, fmt.Errorf("--redis must be specified for backend=redis")
		}
		cl := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        []string{*optRedis},
			DialTimeout:  time.Second * 2,
			ReadTimeout:  time.Second * 2,
			WriteTimeout: time.Second * 2,
		})
		return &ticket.Redis{Key: *optCounterKey, Client: cl}, func() { cl.Close() }, nil
	case "datastore":
		pjID := os.Getenv("PROJECT_ID")
		cl, err := datastore.NewClient(ctx, pjID)
		if err != nil {
			return nil, nil, fmt.Errorf("datastore.NewClient: %w", err)
		}
		name := *optName
		if name == "" {
			name = uuid.New().String()
			logger.Infof("name=%s", name)
		}
		d := &ticket.Datastore{
			Client:    cl,
			Kind:      *optKind,
			Name:      name,
			Namespace: *optNameSpace,
		}
		return d, func() { cl.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", *optBackend)
	}
}
