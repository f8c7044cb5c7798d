// Package templates renders the web board as templ components.
package templates

import (
	"net/url"

	"github.com/a-h/templ"

	"tramboard/internal/messages"
	"tramboard/internal/query"
)

//go:generate templ generate

// Page holds the fields every page needs.
type Page struct {
	Title        string
	Lang         string
	AssetVersion string // content hash of static assets, for cache busting
}

// RecentItem is a recent stop with its favorite state.
type RecentItem struct {
	Name     string
	Favorite bool
}

// Board is the data for the departure board page.
type Board struct {
	Term      string
	Favorites []string
	Recent    []RecentItem
	Result    *query.Result // nil before the first query
	Msgs      *messages.Printer
}

func stopURL(name string) templ.SafeURL {
	return templ.URL("/?q=" + url.QueryEscape(name))
}

func star(favorite bool) string {
	if favorite {
		return "★"
	}
	return "☆"
}

func statusClass(res query.Result) string {
	if res.Failed() {
		return "status error"
	}
	return "status"
}
