package console

import (
	"context"
	"sync"
	"sync/atomic"

	"jobboard/internal/events"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

type DeleteFailure struct {
	ID  string
	Err error
}

type BulkDeleteResult struct {
	Deleted []string
	Failed  []DeleteFailure
}

type deleteStats struct {
	deleted int32
	failed  int32
}

// BulkDelete deletes ids with a bounded pool of workers. Every id ends up in
// exactly one of Deleted or Failed, in input order.
func (c *Console) BulkDelete(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	if err := c.session.Require(models.PermDeleteJobs); err != nil {
		return nil, err
	}

	errs := make([]error, len(ids))
	stats := &deleteStats{}
	idxChan := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				if err := c.jobs.Delete(ctx, ids[idx]); err != nil {
					c.logger.Error("failed to delete job",
						zap.String("job_id", ids[idx]),
						zap.Error(err))
					errs[idx] = err
					atomic.AddInt32(&stats.failed, 1)
					continue
				}
				atomic.AddInt32(&stats.deleted, 1)
			}
		}()
	}

	for i := range ids {
		idxChan <- i
	}
	close(idxChan)
	wg.Wait()

	res := &BulkDeleteResult{}
	for i, id := range ids {
		if errs[i] != nil {
			res.Failed = append(res.Failed, DeleteFailure{ID: id, Err: errs[i]})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	c.logger.Info("bulk delete finished",
		zap.Int32("deleted", atomic.LoadInt32(&stats.deleted)),
		zap.Int32("failed", atomic.LoadInt32(&stats.failed)))
	for _, id := range res.Deleted {
		c.audit(ctx, events.ActionJobDelete, id, map[string]interface{}{"bulk": true})
	}
	return res, nil
}
