package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/go-ticket-playground/internal/log"
	"github.com/tckz/go-ticket-playground/internal/seen"
	"github.com/tckz/go-ticket-playground/internal/ticket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optWorkers      = flag.Uint64("workers", 4, "Number of workers")
	optLogLevel     = flag.String("log-level", "info", "info|warn|error")
	optSubscription = flag.String("subscription", "", "subscription name")
	optRedis        = flag.String("redis", "", "addr:port of redis")
	optCounterKey   = flag.String("counter-key", "watch-draws-received", "key of redis")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optSubscription == "" {
		logger.Fatalf("*** --subscription must be specified.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pjID := os.Getenv("PROJECT_ID")

	cl, err := pubsub.NewClient(ctx, pjID)
	if err != nil {
		logger.Fatalf("*** pubsub.NewClient: %v", err)
	}
	defer cl.Close()

	// received counts draw events; it is a plain dispenser used as a
	// counter, shared across watcher processes when redis is given.
	var received ticket.Dispenser
	var marker seen.Marker
	if *optRedis == "" {
		received = ticket.NewLocal()
		marker = seen.NewLocal(1 * time.Minute)
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
		received = &ticket.Redis{Key: *optCounterKey, Client: rcl}
		marker = &seen.Redis{Client: rcl, TTL: time.Second * 60}
	}

	// Highest ticket number seen so far. received==maxSeen at the end of a
	// single-publisher run means no gaps and no repeats got through.
	var maxSeen int64

	eg, ctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < *optWorkers; i++ {
		eg.Go(func() error {
			subs := cl.Subscription(*optSubscription)
			return subs.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
				if got, err := marker.Acquire(ctx, msg.ID); err != nil {
					logger.Errorf("Acquire: %v", err)
					return
				} else if !got {
					logger.Debugf("msgID=%s already claimed by another watcher", msg.ID)
					msg.Ack()
					return
				}

				n, err := strconv.ParseInt(strings.TrimSpace(string(msg.Data)), 10, 64)
				if err != nil {
					logger.Errorf("ParseInt: data=%q, %v", msg.Data, err)
					msg.Ack()
					return
				}

				for {
					cur := atomic.LoadInt64(&maxSeen)
					if n <= cur || atomic.CompareAndSwapInt64(&maxSeen, cur, n) {
						break
					}
				}

				if c, err := received.Draw(ctx); err != nil {
					logger.Errorf("Draw: %v", err)
					return
				} else if c%1000 == 0 {
					logger.Infof("received=%d, maxSeen=%d", c, atomic.LoadInt64(&maxSeen))
				}
				msg.Ack()
			})
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)

	s := <-sig
	logger.Infof("Received signal: %v", s)
	cancel()

	logger.Infof("Waiting goroutines exit")
	if err := eg.Wait(); err != nil {
		logger.Errorf("Wait: %v", err)
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		v, _ := received.Last(ctx)
		logger.Infof("received=%s, maxSeen=%s", humanize.Comma(v), humanize.Comma(atomic.LoadInt64(&maxSeen)))
	}
}
