// Package monitor defines the domain model of the automatic live-check loop.
package monitor
