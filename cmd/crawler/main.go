// Command crawler fetches the price lists of the selected chains for one
// date and writes the CSV tables and ZIP archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/config"
	"github.com/raushankrgupta/price-list-crawler/crawl"
	"github.com/raushankrgupta/price-list-crawler/logger"
	"github.com/raushankrgupta/price-list-crawler/metrics"
	"github.com/raushankrgupta/price-list-crawler/scrapers"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, _ := config.Load()

	var (
		dateFlag   = flag.String("date", time.Now().Format(time.DateOnly), "crawl date (YYYY-MM-DD)")
		chainsFlag = flag.String("chains", "", "comma separated chains to crawl (default all)")
		output     = flag.String("output", cfg.OutputDir, "output directory")
		upload     = flag.Bool("upload", false, "upload the archive to S3")
		notify     = flag.Bool("notify", false, "e-mail the crawl report")
		list       = flag.Bool("list", false, "list supported chains and exit")
	)
	flag.Parse()

	if *list {
		fmt.Println("Supported chains:")
		for _, c := range scrapers.Chains() {
			fmt.Println("  " + c)
		}
		return 0
	}

	log := logger.Must(cfg.LogLevel)
	defer log.Sync()

	date, err := time.Parse(time.DateOnly, *dateFlag)
	if err != nil {
		log.Error("invalid date", zap.String("date", *dateFlag), zap.Error(err))
		return 2
	}
	var chains []string
	if *chainsFlag != "" {
		chains = strings.Split(*chainsFlag, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.OutputDir = *output
	svc, err := crawl.NewService(ctx, cfg, log, metrics.New(nil), crawl.Options{Upload: *upload, Notify: *notify})
	if err != nil {
		log.Error("failed to set up crawl", zap.Error(err))
		return 2
	}

	summary, err := svc.Run(ctx, date, chains)
	if err != nil {
		log.Error("crawl failed", zap.Error(err))
		return 1
	}
	fmt.Print(summary.Report())
	if summary.AllFailed() {
		return 1
	}
	return 0
}
