package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/app"
	"github.com/wichananm65/able-backend/internal/config"
	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/favorite"
	"github.com/wichananm65/able-backend/internal/source"
)

var productsCSV = flag.String("products-csv", "", "replace the demo products with a CSV export")

// seed creates the schema and loads the demo catalog into DATABASE_URL.
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := app.InitLogger(cfg.LogMode, cfg.LogFile); err != nil {
		panic(err)
	}
	defer zap.L().Sync()
	if cfg.DatabaseURL == "" {
		zap.L().Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	pg := source.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		zap.L().Fatal("create catalog schema", zap.Error(err))
	}

	fixtures, err := source.NewFixtures()
	if err != nil {
		zap.L().Fatal("load fixtures", zap.Error(err))
	}
	catalog := fixtures.Catalog()
	if *productsCSV != "" {
		products, err := readProducts(*productsCSV, catalog)
		if err != nil {
			zap.L().Fatal("read products", zap.String("file", *productsCSV), zap.Error(err))
		}
		catalog.Products = products
	}

	if err := pg.Import(ctx, catalog); err != nil {
		zap.L().Fatal("import catalog", zap.Error(err))
	}
	if err := favorite.NewPostgresRepository(db).EnsureSchema(ctx); err != nil {
		zap.L().Fatal("create saved items schema", zap.Error(err))
	}
	zap.L().Info("seeded catalog",
		zap.Int("brands", len(catalog.Brands)),
		zap.Int("categories", len(catalog.Categories)),
		zap.Int("features", len(catalog.Features)),
		zap.Int("products", len(catalog.Products)),
	)
}

func readProducts(path string, c source.Catalog) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	names := make(map[uuid.UUID]string, len(c.Brands))
	for _, b := range c.Brands {
		names[b.ID] = b.Name
	}
	return source.DecodeProductsCSV(f, names, time.Now().UTC())
}
