// Package monitor implements the automatic live-check loop.
//
// On every tick it asks the platform APIs (Twitch Helix, YouTube Data API or
// live-page resolution) and the generic stream prober which of the configured
// channels are live, starts recordings for the record set and logs the
// notify-only set.
package monitor
