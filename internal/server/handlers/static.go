package handlers

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// StaticHandler отдает статические ресурсы, которые клиент кладет в кэш при установке:
// "/", "/offline.html" и "/manifest.json"
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // каталог встроен при сборке
	}
	return http.FileServer(http.FS(sub))
}
