package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"shop-backend/internal/shared"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// Enqueuer là phần của *asynq.Client mà TaskClient dùng
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskClient đẩy các task của order lên asynq
type TaskClient struct {
	client Enqueuer
}

func NewTaskClient(client Enqueuer) *TaskClient {
	return &TaskClient{client: client}
}

// ScheduleExpiry hẹn huỷ đơn Pending Payment sau `after`.
// TaskID cố định theo order nên enqueue lặp lại không tạo task thứ hai.
func (c *TaskClient) ScheduleExpiry(ctx context.Context, orderID uuid.UUID, after time.Duration) error {
	task, err := utils.MarshalTask(shared.TypeExpirePendingOrder, shared.ExpirePendingOrderPayload{
		OrderID: orderID.String(),
	})
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueCritical),
		asynq.TaskID(ExpireTaskID(orderID)),
		asynq.ProcessIn(after),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Enqueued pending order expiry", map[string]interface{}{
		"order_id": orderID.String(),
		"task_id":  info.ID,
		"process":  info.NextProcessAt.Format(time.RFC3339),
	})
	return nil
}

func ExpireTaskID(orderID uuid.UUID) string {
	return "expire:" + orderID.String()
}
