// Package probe answers "is this channel live right now" for each
// supported service: the Twitch Helix API, the YouTube /live redirect
// page, and streamlink/yt-dlp probing for everything else.
package probe
