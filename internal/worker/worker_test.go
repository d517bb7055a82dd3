package worker

import (
	"context"
	"testing"
	"time"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven/mocks"
	"github.com/Vettuu/CHArloTte/internal/core/services"
)

type workerFixture struct {
	queue      *mocks.MockTaskQueue
	chunkStore *mocks.MockChunkStore
	client     *mocks.MockRealtimeClient
	sessions   *mocks.MockSessionStore
	worker     *Worker
}

func newWorkerFixture(t *testing.T, docs []domain.Document) workerFixture {
	t.Helper()

	queue := mocks.NewMockTaskQueue()
	chunkStore := mocks.NewMockChunkStore()
	client := mocks.NewMockRealtimeClient()
	sessions := mocks.NewMockSessionStore()
	source := mocks.NewMockDocumentSource(docs, nil)

	indexer := services.NewIndexer(services.IndexerConfig{
		Source:     source,
		ChunkStore: chunkStore,
		Embeddings: mocks.NewMockEmbeddingService(),
	})
	realtime := services.NewRealtime(services.RealtimeConfig{
		Client:   client,
		Sessions: sessions,
		Tools:    services.NewTools(source, nil),
	})

	w := New(Config{
		TaskQueue:      queue,
		Indexer:        indexer,
		Realtime:       realtime,
		DequeueTimeout: 1,
	})
	return workerFixture{
		queue:      queue,
		chunkStore: chunkStore,
		client:     client,
		sessions:   sessions,
		worker:     w,
	}
}

func waitFor(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !condition() {
		select {
		case <-deadline:
			t.Fatal(message)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func taskStatus(t *testing.T, queue *mocks.MockTaskQueue, taskID string) domain.TaskStatus {
	t.Helper()
	task, err := queue.GetTask(context.Background(), taskID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	return task.Status
}

func TestWorkerProcessesRebuildTask(t *testing.T) {
	docs := []domain.Document{{
		ID:      "doc-1",
		Title:   "Doc1",
		Content: "A paragraph long enough to survive the minimum chunk length filter.",
	}}
	fx := newWorkerFixture(t, docs)

	task := domain.NewRebuildIndexTask()
	if err := fx.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := fx.worker.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fx.worker.Stop()

	waitFor(t, func() bool {
		return taskStatus(t, fx.queue, task.ID) == domain.TaskStatusCompleted
	}, "rebuild task never completed")

	count, err := fx.chunkStore.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count == 0 {
		t.Error("rebuild task left the chunk store empty")
	}
}

func TestWorkerProcessesWebhookTask(t *testing.T) {
	fx := newWorkerFixture(t, nil)

	event := &domain.WebhookEvent{
		Event:     "response.function_call",
		SessionID: "sess_1",
		CallID:    "call_1",
		ToolName:  "conference.general_info",
	}
	task, err := domain.NewWebhookEventTask(event)
	if err != nil {
		t.Fatalf("NewWebhookEventTask() error = %v", err)
	}
	if err := fx.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := fx.worker.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fx.worker.Stop()

	waitFor(t, func() bool {
		return taskStatus(t, fx.queue, task.ID) == domain.TaskStatusCompleted
	}, "webhook task never completed")

	results := fx.client.Results()
	if len(results) != 1 {
		t.Fatalf("SendFunctionResult called %d times, want 1", len(results))
	}
	if results[0].CallID != "call_1" {
		t.Errorf("result call ID = %q, want call_1", results[0].CallID)
	}
}

func TestWorkerFailsUnknownTaskType(t *testing.T) {
	fx := newWorkerFixture(t, nil)

	task := domain.NewTask(domain.TaskType("bogus"), nil)
	if err := fx.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := fx.worker.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fx.worker.Stop()

	waitFor(t, func() bool {
		return taskStatus(t, fx.queue, task.ID) == domain.TaskStatusFailed
	}, "unknown task never exhausted its retries")
}

func TestWorkerHealth(t *testing.T) {
	fx := newWorkerFixture(t, nil)

	health := fx.worker.Health(context.Background())
	if health.Running {
		t.Error("worker should not report running before Start")
	}
	if !health.QueueHealth {
		t.Error("queue should be healthy")
	}

	if err := fx.worker.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fx.worker.Stop()

	health = fx.worker.Health(context.Background())
	if !health.Running {
		t.Error("worker should report running after Start")
	}
}
