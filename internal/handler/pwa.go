package handler

import (
	"encoding/json"
	"net/http"
)

type manifest struct {
	Name            string   `json:"name"`
	ShortName       string   `json:"short_name"`
	Description     string   `json:"description"`
	StartURL        string   `json:"start_url"`
	Scope           string   `json:"scope"`
	Display         string   `json:"display"`
	BackgroundColor string   `json:"background_color"`
	ThemeColor      string   `json:"theme_color"`
	Lang            string   `json:"lang"`
	Categories      []string `json:"categories"`
}

// Manifest serves the web app manifest so the board can be installed to a
// home screen.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "no-cache")
	err := json.NewEncoder(w).Encode(manifest{
		Name:            "tramboard",
		ShortName:       "tramboard",
		Description:     "Live tram and bus departures for Munich stops",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#0065ae",
		Lang:            h.msgs.Language().String(),
		Categories:      []string{"navigation", "travel"},
	})
	if err != nil {
		h.logger.Error("encoding manifest", "error", err)
	}
}
