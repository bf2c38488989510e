// Command import-products loads a product catalogue from an xlsx file and
// seeds opening stock as PURCHASE ledger entries.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pntme/Retail-management/internal/config"
	"github.com/pntme/Retail-management/internal/db"
	"github.com/pntme/Retail-management/internal/domain"
	"github.com/pntme/Retail-management/internal/excel"
	"github.com/pntme/Retail-management/internal/repository"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var path string
	var dryRun bool
	flag.StringVar(&path, "file", "", "path to the products xlsx file")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	flag.Parse()

	if path == "" {
		log.Fatal("-file is required")
	}

	file, err := os.Open(path)
	if err != nil {
		log.WithError(err).Fatal("open file")
	}
	defer file.Close()

	rows, err := excel.ParseProducts(file)
	if err != nil {
		log.WithError(err).Fatal("parse products")
	}
	log.WithField("rows", len(rows)).Info("parsed product rows")

	if dryRun {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		log.WithError(err).Fatal("database error")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("migration error")
	}

	repo := repository.New(pool)
	createdBy := "import-products"

	imported := 0
	for _, row := range rows {
		product, err := repo.CreateProduct(ctx, repository.ProductCreateInput{
			Name:      row.Name,
			SellPrice: row.SellPrice,
			Vendor:    row.Vendor,
			RackID:    row.RackID,
		})
		if err != nil {
			log.WithError(err).WithField("product", row.Name).Fatal("create product")
		}
		if row.OpeningQuantity > 0 {
			if _, err := repo.RecordMovement(ctx, repository.RecordMovementInput{
				ProductID: product.ID,
				Type:      domain.TypePurchase,
				Quantity:  row.OpeningQuantity,
				UnitCost:  row.OpeningUnitCost,
				CreatedBy: &createdBy,
			}); err != nil {
				log.WithError(err).WithField("product", row.Name).Fatal("seed opening stock")
			}
		}
		imported++
	}
	log.WithField("imported", imported).Info("import complete")
}
