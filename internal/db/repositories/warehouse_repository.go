package repositories

import (
	"context"
	"fmt"

	"fleet-analytics/modernity/internal/constants"
	"fleet-analytics/modernity/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 200

// Snapshot is the full content of the warehouse tables for one release.
type Snapshot struct {
	Features []gorm.AirlineFeature
	Scores   []gorm.AirlineScore
	Clusters []gorm.AirlineCluster
	Regions  []gorm.RegionSummary
	Mapping  []gorm.CountryRegionMapping
}

// LoadStats counts rows loaded per table.
type LoadStats map[string]int

// Total sums every table.
func (s LoadStats) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// WarehouseRepository replaces the analytical tables and views.
type WarehouseRepository struct {
	db *gormlib.DB
}

func NewWarehouseRepository(db *gormlib.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// Migrate creates or updates the tables and views without loading data.
func (r *WarehouseRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := dropViews(tx); err != nil {
			return err
		}
		if err := migrateTables(tx); err != nil {
			return err
		}
		return createViews(tx)
	})
}

// Replace swaps the content of every table for snap inside one transaction.
// Readers see either the previous release or the new one. Duplicate keys
// inside snap keep their first row.
func (r *WarehouseRepository) Replace(ctx context.Context, snap Snapshot) (LoadStats, error) {
	stats := LoadStats{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := dropViews(tx); err != nil {
			return err
		}
		if err := migrateTables(tx); err != nil {
			return err
		}

		if err := replaceTable(tx, &gorm.AirlineFeature{}, snap.Features, stats); err != nil {
			return err
		}
		if err := replaceTable(tx, &gorm.AirlineScore{}, snap.Scores, stats); err != nil {
			return err
		}
		if err := replaceTable(tx, &gorm.AirlineCluster{}, snap.Clusters, stats); err != nil {
			return err
		}
		if err := replaceTable(tx, &gorm.RegionSummary{}, snap.Regions, stats); err != nil {
			return err
		}
		if err := replaceTable(tx, &gorm.CountryRegionMapping{}, snap.Mapping, stats); err != nil {
			return err
		}

		return createViews(tx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type tabler interface {
	TableName() string
}

func replaceTable[T any](tx *gormlib.DB, model tabler, rows []T, stats LoadStats) error {
	table := model.TableName()

	if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if len(rows) > 0 {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, insertBatchSize)
		if res.Error != nil {
			return fmt.Errorf("failed to load %s: %w", table, res.Error)
		}
		stats[table] = int(res.RowsAffected)
	} else {
		stats[table] = 0
	}
	return nil
}

func migrateTables(tx *gormlib.DB) error {
	if err := tx.AutoMigrate(
		&gorm.AirlineFeature{},
		&gorm.AirlineScore{},
		&gorm.AirlineCluster{},
		&gorm.RegionSummary{},
		&gorm.CountryRegionMapping{},
	); err != nil {
		return fmt.Errorf("failed to migrate warehouse tables: %w", err)
	}
	return nil
}

func dropViews(tx *gormlib.DB) error {
	for _, stmt := range []string{constants.DropAirlineFullView, constants.DropRegionModernityView} {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to drop view: %w", err)
		}
	}
	return nil
}

func createViews(tx *gormlib.DB) error {
	for _, stmt := range []string{constants.CreateAirlineFullView, constants.CreateRegionModernityView} {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create view: %w", err)
		}
	}
	return nil
}
