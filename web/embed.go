package web

import "embed"

// StaticFiles embeds the board's stylesheet and script.
//
//go:embed static/*
var StaticFiles embed.FS
