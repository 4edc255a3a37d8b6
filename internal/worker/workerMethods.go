package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	jobmodel "github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/metrics"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, 60*time.Second)
	defer cancel()
	log := logger.With("traceId", job.TraceId)
	log.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIngest {
		job.CurrentStep = jobmodel.IngestProcessing
		job = ingestDocument(job, ctx, log)

	} else {
		job.CurrentStep = jobmodel.RedisCall
		job = processQuery(job, ctx, log)
		if job.Status != jobmodel.JobStatusError {
			if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
				log.Error("Failed to save chat history", "err", err)
			}
		}
	}

	job.EndTime = time.Now()
	// An errored job stays errored, only clean runs get marked complete
	finalStatus := jobmodel.JobStatusComplete
	if job.Status == jobmodel.JobStatusError {
		finalStatus = jobmodel.JobStatusError
	}
	saveJobState(ctx, job, finalStatus)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func ingestDocument(job jobmodel.Job, ctx context.Context, log *logger_i.Logger) jobmodel.Job {
	processed := _ragService.IngestDocument(ctx, job)
	log.Debug("Ingestion finished", "step", processed.CurrentStep)
	return processed
}

func processQuery(job jobmodel.Job, ctx context.Context, log *logger_i.Logger) jobmodel.Job {
	err, messageHistory := _jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		log.Error("Failed to get message history", "err", err)
	}
	job = _ragService.ProcessRequest(ctx, job, messageHistory)
	return job
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
