// Package domain contains the core study-data entities the task handlers
// operate on, independent of storage or transport concerns.
package domain
