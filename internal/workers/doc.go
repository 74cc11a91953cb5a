// Package workers contains the concrete task handlers: AI analysis of
// mistake records, daily practice task generation, and variant question
// generation. Each handler satisfies the task.Handler contract; the worker
// pool knows nothing about them beyond that.
package workers
