package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nutriflow/backend/internal/models"
)

const defaultImportBatchSize = 1000

var foodColumns = []string{
	"id", "created_at", "updated_at", "name", "category", "meal_tags",
	"portion_amount", "portion_unit", "portion_grams",
	"calories", "protein", "carbs", "fat", "active",
}

// CopyFromer is implemented by *pgxpool.Pool and *pgx.Conn.
type CopyFromer interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// FoodImporter bulk-loads catalog foods with the COPY protocol.
type FoodImporter struct {
	conn      CopyFromer
	batchSize int
	now       func() time.Time
}

func NewFoodImporter(conn CopyFromer) *FoodImporter {
	return &FoodImporter{
		conn:      conn,
		batchSize: defaultImportBatchSize,
		now:       time.Now,
	}
}

// Import copies foods in batches and reports each batch's row count to
// progress, which may be nil. Foods without an id get one.
func (i *FoodImporter) Import(ctx context.Context, foods []models.Food, progress func(rows int)) (int64, error) {
	var total int64
	for start := 0; start < len(foods); start += i.batchSize {
		end := start + i.batchSize
		if end > len(foods) {
			end = len(foods)
		}
		batch := foods[start:end]
		stamp := i.now()

		n, err := i.conn.CopyFrom(
			ctx,
			pgx.Identifier{"foods"},
			foodColumns,
			pgx.CopyFromSlice(len(batch), func(j int) ([]interface{}, error) {
				f := &batch[j]
				if f.ID == uuid.Nil {
					f.ID = uuid.New()
				}
				tags := []string(f.MealTags)
				if tags == nil {
					tags = []string{}
				}
				return []interface{}{
					f.ID,
					stamp,
					stamp,
					f.Name,
					strings.ToLower(f.Category),
					tags,
					f.PortionAmount,
					f.PortionUnit,
					f.ReferenceGrams(),
					f.Calories,
					f.Protein,
					f.Carbs,
					f.Fat,
					f.Active,
				}, nil
			}),
		)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to copy foods %d-%d: %w", start, end, err)
		}
		if progress != nil {
			progress(int(n))
		}
	}
	return total, nil
}
