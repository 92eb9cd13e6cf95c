package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application and by API handlers that trigger crawls
// manually.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
