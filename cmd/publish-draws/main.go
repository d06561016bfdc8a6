package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/go-ticket-playground/internal/log"
	"github.com/tckz/go-ticket-playground/internal/ticket"
	vh "github.com/tckz/vegetahelper"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optRate = &vh.RateFlag{
		Rate: &vegeta.Rate{
			Freq: 30,
			Per:  1 * time.Second,
		}}
	optDuration   = flag.Duration("duration", 10*time.Second, "Duration of the run [0 = forever]")
	optOutput     = flag.String("output", "", "/path/to/results.bin or 'stdout'")
	optWorkers    = flag.Uint64("workers", vegeta.DefaultWorkers, "Number of workers")
	optLogLevel   = flag.String("log-level", "info", "info|warn|error")
	optTopic      = flag.String("topic", "", "topic name")
	optCounter    = flag.String("counter", "ticket-counter", "counter name attached to each event")
	optRedis      = flag.String("redis", "", "addr:port of redis [empty = draw in-process]")
	optCounterKey = flag.String("counter-key", "ticket-counter", "key of redis")
)

func init() {
	godotenv.Load()

	flag.Var(optRate, "rate", "Number of draws per time unit")
	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

type nopWriteCloser struct {
	io.Writer
}

func (c nopWriteCloser) Close() error {
	return nil
}

func openResultFile(out string) (io.WriteCloser, error) {
	switch out {
	case "stdout":
		return &nopWriteCloser{os.Stdout}, nil
	default:
		return os.Create(out)
	}
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optOutput == "" {
		logger.Fatalf("*** --output must be specified.")
	}

	if *optTopic == "" {
		logger.Fatalf("*** --topic must be specified.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pjID := os.Getenv("PROJECT_ID")

	cl, err := pubsub.NewClient(ctx, pjID)
	if err != nil {
		logger.Fatalf("*** pubsub.NewClient: %v", err)
	}
	defer cl.Close()

	var d ticket.Dispenser
	if *optRedis == "" {
		d = ticket.NewLocal()
	} else {
		rcl := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        []string{*optRedis},
			DialTimeout:  time.Second * 2,
			ReadTimeout:  time.Second * 2,
			WriteTimeout: time.Second * 2,
			PoolSize:     200,
			PoolTimeout:  time.Second * 5,
		})
		defer rcl.Close()
		d = &ticket.Redis{Key: *optCounterKey, Client: rcl}
	}

	topic := cl.Topic(*optTopic)
	topic.PublishSettings.NumGoroutines = 30

	publisherID := uuid.New().String()
	logger.Infof("publisher=%s", publisherID)

	chRes := make(chan *pubsub.PublishResult, 30)
	eg, ctx := errgroup.WithContext(ctx)
	var published int64
	for i := 0; i < 30; i++ {
		eg.Go(func() error {
			for {
				select {
				case res, ok := <-chRes:
					if !ok {
						return nil
					}

					if _, err := res.Get(ctx); err != nil {
						logger.Errorf("*** Get: %v", err)
						return err
					}
					atomic.AddInt64(&published, 1)
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}

	atk := vh.NewAttacker(func(ctx context.Context) (result *vh.HitResult, retErr error) {
		n, err := d.Draw(ctx)
		if err != nil {
			return nil, fmt.Errorf("Draw: %w", err)
		}

		msg := &pubsub.Message{
			Data: []byte(strconv.FormatInt(n, 10)),
			Attributes: map[string]string{
				"counter":   *optCounter,
				"publisher": publisherID,
			},
		}
		res := topic.Publish(ctx, msg)
		chRes <- res

		return result, nil
	}, vh.WithWorkers(*optWorkers))
	res := atk.Attack(ctx, *optRate.Rate, *optDuration, "publish-draws")

	out, err := openResultFile(*optOutput)
	if err != nil {
		logger.Fatal(err)
	}
	defer out.Close()
	enc := vegeta.NewEncoder(out)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)

loop:
	for {
		select {
		case s := <-sig:
			logger.Infof("Received signal: %s", s)
			cancel()
			// keep loop until 'res' is closed.
		case r, ok := <-res:
			if !ok {
				break loop
			}
			if err := enc.Encode(r); err != nil {
				logger.Errorf("*** Encode: %v", err)
				break loop
			}
		}
	}

	close(chRes)
	logger.Infof("waiting goroutines for res.Get exit")
	if err := eg.Wait(); err != nil {
		logger.Errorf("Wait: %v", err)
	}

	last, err := d.Last(context.Background())
	if err != nil {
		logger.Errorf("Last: %v", err)
	}
	logger.Infof("published=%d, last=%d", published, last)

	cancel()
}
