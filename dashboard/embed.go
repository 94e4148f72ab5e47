// Package dashboard embeds the static dashboard page served by the bridge.
package dashboard

import "embed"

//go:embed assets/*
var Assets embed.FS
