package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/go-ticket-playground/internal/log"
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
	optLogLevel   = flag.String("log-level", "info", "info|warn|error")
	optListen     = flag.String("listen", ":3000", "addr:port to listen on")
	optRedis      = flag.String("redis", "", "addr:port of redis")
	optCounterKey = flag.String("counter-key", "ticket-counter", "key of redis")
	optIdleTTL    = flag.Duration("idle-ttl", 10*time.Minute, "Evict named counters idle for this long")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var shared ticket.Dispenser
	var named func(name string) ticket.Dispenser
	if *optRedis == "" {
		shared = ticket.NewLocal()
		reg := ticket.NewRegistry(*optIdleTTL)
		named = func(name string) ticket.Dispenser { return reg.Dispenser(name) }
	} else {
		cl := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        []string{*optRedis},
			DialTimeout:  time.Second * 2,
			ReadTimeout:  time.Second * 2,
			WriteTimeout: time.Second * 2,
			PoolSize:     200,
			PoolTimeout:  time.Second * 5,
		})
		defer cl.Close()
		shared = &ticket.Redis{Key: *optCounterKey, Client: cl}
		named = func(name string) ticket.Dispenser {
			return &ticket.Redis{Key: *optCounterKey + ":" + name, Client: cl}
		}
	}

	pick := func(r *http.Request) ticket.Dispenser {
		if name := r.URL.Query().Get("counter"); name != "" {
			return named(name)
		}
		return shared
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/draw", func(w http.ResponseWriter, r *http.Request) {
		n, err := pick(r).Draw(r.Context())
		if err != nil {
			logger.Errorf("Draw: %v", err)
			http.Error(w, "draw failed", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "%d\n", n)
	})
	mux.HandleFunc("/last", func(w http.ResponseWriter, r *http.Request) {
		n, err := pick(r).Last(r.Context())
		if err != nil {
			logger.Errorf("Last: %v", err)
			http.Error(w, "last failed", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "%d\n", n)
	})

	sv := &http.Server{
		Addr:    *optListen,
		Handler: mux,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Infof("listening on %s", *optListen)
		if err := sv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sv.Shutdown(sctx)
	})

	if err := eg.Wait(); err != nil {
		logger.Errorf("Wait: %v", err)
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		v, _ := shared.Last(ctx)
		logger.Infof("last=%s", humanize.Comma(v))
	}
}
