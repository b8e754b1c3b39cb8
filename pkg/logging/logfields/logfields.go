// Package logfields defines common logging fields which are used across packages
package logfields

const (
	// LogSubsys is the field denoting the subsystem when logging
	LogSubsys = "subsys"

	// Operator is the name of the stream operator a log line refers to
	Operator = "operator"

	// SubscriptionID is the unique identifier of a subscription
	SubscriptionID = "subscriptionID"

	// State is the lifecycle state of a subscription
	State = "state"

	// Signal is the kind of signal delivered to an observer (next, error, complete, cancel)
	Signal = "signal"

	// Value is a value delivered by a stream
	Value = "value"

	// Category is the user supplied category of a traced stream
	Category = "category"

	// Scheduler is the name of a scheduler
	Scheduler = "scheduler"

	// Scenario is the name of a training scenario
	Scenario = "scenario"

	// Group is the group a training scenario belongs to
	Group = "group"

	// Duration is the duration of an operation
	Duration = "duration"

	// Workers is the number of workers of a pool
	Workers = "workers"

	// Source is the index of an input stream of a combining operator
	Source = "source"
)
