package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"

	"gopricetracker/config"
	"gopricetracker/internal/aliexpress/app"
	"gopricetracker/internal/aliexpress/business/services/canonical"
	"gopricetracker/internal/aliexpress/business/services/mutation"
	"gopricetracker/internal/aliexpress/business/services/reconcile"
	"gopricetracker/internal/aliexpress/pkg/clients"
	"gopricetracker/internal/aliexpress/storage"
	"gopricetracker/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the application config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	cfg.ApplyEnv()

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("mongo connect: %s", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	db := client.Database(cfg.Mongo.Database)
	baseLog := logger.NewLogger(os.Stdout, "[ingest]")

	products := storage.NewProductRepository(db)
	categories, err := storage.NewCategoryRepository(db)
	if err != nil {
		log.Fatalf("category repository: %s", err)
	}

	perMinute := cfg.AliExpress.RatePerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	signer := clients.NewSigner(cfg.AliExpress.AppKey, cfg.AliExpress.AppSecret)

	skuClient := clients.NewSkuDetailClient(cfg.AliExpress.Host, signer, limiter, baseLog.WithPrefix("[sku]"))
	detailClient := clients.NewProductDetailClient(cfg.AliExpress.Host, signer, limiter, baseLog.WithPrefix("[detail]"))
	feedClient := clients.NewCategoryFeedClient(cfg.AliExpress.Host, signer, limiter, baseLog.WithPrefix("[feed]"))

	canon := canonical.NewCanonicalizer(canonical.SynonymTable(cfg.Values.Synonyms))
	engine := reconcile.NewEngine(canon)
	compiler := mutation.NewCompiler(canon, engine, cfg.Values.CurrencyOrDefault())

	runner := app.NewIngestRunner(
		products,
		categories,
		skuClient,
		detailClient,
		feedClient,
		compiler,
		reconcile.NewClock(),
		cfg.Ingest,
		baseLog,
	)

	report, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %s", err)
	}
	log.Printf("run %s finished: %d listed, %d processed, failed ids: %v",
		report.RunID, report.Listed, report.Processed, report.Failed)
}
