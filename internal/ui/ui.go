// Package ui serves the browser page that captures microphone audio and
// streams it to the relay over a WebSocket.
package ui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static
var assets embed.FS

var staticHandler = newStaticHandler()

func newStaticHandler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Index serves the capture page
func Index(c echo.Context) error {
	page, err := assets.ReadFile("static/index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "capture page missing")
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// Static serves the page's scripts and stylesheets
func Static(c echo.Context) error {
	staticHandler.ServeHTTP(c.Response(), c.Request())
	return nil
}
