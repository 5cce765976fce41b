package processor

import (
	"context"
	"log"

	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/pkg/logger"
	"novemberapples/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// StockMonitor периодически проверяет остатки товаров и выставляет
// gauge-метрику количества товаров ниже порога
type StockMonitor struct {
	cron          *cron.Cron
	inventoryRepo repository.InventoryRepository
	threshold     int
}

func NewStockMonitor(inventoryRepo repository.InventoryRepository, threshold int) *StockMonitor {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &StockMonitor{
		cron:          c,
		inventoryRepo: inventoryRepo,
		threshold:     threshold,
	}
}

func (m *StockMonitor) Start(ctx context.Context, schedule string) error {
	logger.Info().
		Str("schedule", schedule).
		Int("threshold", m.threshold).
		Msg("Starting stock monitor")

	_, err := m.cron.AddFunc(schedule, func() {
		m.checkStock(ctx)
	})
	if err != nil {
		return err
	}

	m.cron.Start()

	// Первая проверка сразу при старте, не дожидаясь расписания
	m.checkStock(ctx)

	return nil
}

func (m *StockMonitor) Stop() {
	logger.Info().Msg("Stopping stock monitor")
	ctx := m.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Stock monitor stopped")
}

func (m *StockMonitor) checkStock(ctx context.Context) {
	low, err := m.inventoryRepo.ListBelow(ctx, m.threshold)
	if err != nil {
		logger.Error().Err(err).Msg("Stock check failed")
		return
	}

	metrics.LowStockProducts.Set(float64(len(low)))

	for _, record := range low {
		logger.Warn().
			Int64("product_id", record.ProductID).
			Int("stock", record.Stock).
			Int("threshold", m.threshold).
			Msg("Low stock")
	}
}

func (m *StockMonitor) GetEntries() []cron.Entry {
	return m.cron.Entries()
}
