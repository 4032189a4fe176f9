package api

import (
	"context"
	"net/http"
	"sync"

	"food-order/bootstrap"
	"food-order/models"
)

var (
	app     *bootstrap.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		app, initErr = bootstrap.New(context.Background())
	})
}

// Handler is the serverless entry point; the app is built on first request.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		writeUnavailable(w)
		return
	}
	app.Router.ServeHTTP(w, r)
}

func writeUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"success":false,"message":"service unavailable","error":"` + string(models.CodeDependency) + `"}`))
}
