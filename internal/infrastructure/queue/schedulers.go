package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

type Scheduler struct {
	scheduler   *asynq.Scheduler
	orderConfig config.OrderConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, orderConfig config.OrderConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:   scheduler,
		orderConfig: orderConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerSweepPendingOrdersJob()
}

// ================================================
// JOB: Sweep stale Pending Payment orders
// ================================================
// Lưới an toàn cho task expire từng đơn: Redis mất task hoặc enqueue lỗi
// lúc đặt hàng thì đơn vẫn bị huỷ ở lần sweep kế tiếp.
func (s *Scheduler) registerSweepPendingOrdersJob() error {
	task, err := utils.MarshalTask(shared.TypeSweepPendingOrders, shared.SweepPendingOrdersPayload{
		Limit: s.orderConfig.SweepLimit,
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.orderConfig.SweepCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepPendingOrders job", err)
		return err
	}

	logger.Info("✓ Registered SweepPendingOrders", map[string]interface{}{
		"cron": s.orderConfig.SweepCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
