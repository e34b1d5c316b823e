// internal/common/camunda/worker.go
package camunda

import (
	"pet-doctor/internal/common/config"
	"pet-doctor/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes, fails or throws the job itself.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type Worker struct {
	taskType string
	worker   worker.JobWorker
	logger   logger.Logger
}

// StartWorker opens a job worker for taskType using the per-worker settings.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	l := log.WithFields(map[string]interface{}{"taskType": taskType})
	l.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return &Worker{taskType: taskType, worker: jobWorker, logger: l}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the worker and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
