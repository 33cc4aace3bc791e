package tasks

// TaskSchedulerInterface is the surface the rest of the application uses to
// run background work: queue management for the pipeline stages plus named
// triggering for the manual endpoints.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Trigger(taskType string) (TaskInterface, error)
}
