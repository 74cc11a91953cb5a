// Package task defines the data types flowing through the worker system:
// the task record with its lifecycle states, the handler contract every
// task-type implementation satisfies, and the registry mapping task type
// names to handler factories.
package task
