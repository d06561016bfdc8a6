package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/tckz/go-ticket-playground/internal/log"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

var (
	optTable    = flag.String("table", "", "project.dataset.table of draw events")
	optSince    = flag.Duration("since", 24*time.Hour, "How far back to audit")
	optOut      = flag.String("out", "/dev/stdout", "path/to/output")
	optLocation = flag.String("location", "", "location of dataset")
	optLogLevel = flag.String("log-level", "info", "info|warn|error")
)

var logger *zap.SugaredLogger

// counterStat is one audited counter. For a gapless, repeat-free sequence
// the number of draws equals the highest ticket drawn.
type counterStat struct {
	Counter   string `bigquery:"counter" json:"counter"`
	Draws     int64  `bigquery:"draws" json:"draws"`
	MaxTicket int64  `bigquery:"max_ticket" json:"max_ticket"`
}

func main() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar()

	if *optTable == "" {
		logger.Fatalf("*** --table must be specified")
	}

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Fatalf("*** run: %v", err)
	}
}

func run(ctx context.Context) error {
	pjID := os.Getenv("PROJECT_ID")
	client, err := bigquery.NewClient(ctx, pjID)
	if err != nil {
		return fmt.Errorf("bigquery.NewClient: %v", err)
	}
	defer client.Close()

	w, err := os.Create(*optOut)
	if err != nil {
		return fmt.Errorf("os.Create: %v", err)
	}
	defer w.Close()

	q := client.Query(fmt.Sprintf(`
SELECT counter,
       COUNT(*) AS draws,
       MAX(ticket) AS max_ticket
FROM `+"`%s`"+`
WHERE published_at >= @since
GROUP BY counter
ORDER BY counter`, *optTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "since", Value: time.Now().Add(-*optSince)},
	}

	// Location must match that of the dataset(s) referenced in the query.
	q.Location = *optLocation

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("q.Run: %v", err)
	}

	logger.Infof("job.ID=%s", job.ID())

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("job.Wait: %v", err)
	}

	logger.Infof("totalProcessedSize: %s", humanize.Bytes(uint64(status.Statistics.TotalBytesProcessed)))

	if err := status.Err(); err != nil {
		return fmt.Errorf("status.Err: %v", err)
	}

	it, err := job.Read(ctx)
	if err != nil {
		return fmt.Errorf("job.Read: %v", err)
	}

	enc := json.NewEncoder(w)

	var stats []counterStat
	for {
		var st counterStat
		err := it.Next(&st)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("it.Next: %v", err)
		}

		if st.Draws != st.MaxTicket {
			logger.Warnf("counter=%s draws=%d != max_ticket=%d", st.Counter, st.Draws, st.MaxTicket)
		}

		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("enc.Encode: %v", err)
		}
		stats = append(stats, st)
	}

	total := lo.SumBy(stats, func(st counterStat) int64 { return st.Draws })
	logger.Infof("counters=%d, draws=%s", len(stats), humanize.Comma(total))

	return nil
}
