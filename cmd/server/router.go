package main

import (
	"context"
	"net/http"
	"time"

	"github.com/cleanapi/cleanapi/internal/api"
	"github.com/cleanapi/cleanapi/internal/api/middleware"
	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const healthTimeout = 2 * time.Second

var (
	errRouteNotFound    = domain.NewError(domain.KindNotFound, "Route not found")
	errMethodNotAllowed = domain.NewError(domain.KindMethodNotAllowed, "Method not allowed")
)

// setupRouter builds the chi router with global middleware, the public
// routes and the authenticated resource routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.PeerAddress)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware(app.logger))

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)
	authHandler := api.NewAuthHandler(app.authenticator, app.jwtService)
	userHandler := api.NewUserHandler(app.userService)
	deviceHandler := api.NewDeviceHandler(app.deviceService)
	fileHandler := api.NewFileHandler(app.fileService)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, errMethodNotAllowed)
	})

	r.Get("/health", api.Handle(app.health))
	r.With(app.loginLimiter.Middleware).Post("/auth/login", api.Handle(authHandler.Login))

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/auth/me", api.Handle(authHandler.Me))

		r.Route("/user", func(r chi.Router) {
			r.Get("/", api.Handle(userHandler.List))
			r.Post("/", api.Handle(userHandler.Create))
			r.Get("/{id}", api.Handle(userHandler.Get))
			r.Put("/{id}", api.Handle(userHandler.Update))
			r.Delete("/{id}", api.Handle(userHandler.Delete))
			r.Put("/{id}/credential", api.Handle(userHandler.SetCredential))
		})

		r.Route("/device", func(r chi.Router) {
			r.Get("/", api.Handle(deviceHandler.List))
			r.Post("/", api.Handle(deviceHandler.Create))
			r.Put("/batch", api.Handle(deviceHandler.BatchUpsert))
			r.Get("/{id}", api.Handle(deviceHandler.Get))
			r.Put("/{id}", api.Handle(deviceHandler.Update))
			r.Delete("/{id}", api.Handle(deviceHandler.Delete))
		})

		r.Route("/file", func(r chi.Router) {
			r.Get("/", api.Handle(fileHandler.List))
			r.With(chimiddleware.RequestSize(fileHandler.MaxRequestBytes())).
				Post("/", api.Handle(fileHandler.Upload))
			r.Get("/{id}", fileHandler.Download)
			r.Delete("/{id}", api.Handle(fileHandler.Delete))
		})
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func (app *application) health(r *http.Request) (*api.Result, error) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := app.ping(ctx); err != nil {
		return nil, domain.WrapError(domain.KindUnavailable, "Database is unavailable", err)
	}
	return api.OK(healthResponse{Status: "ok"}), nil
}
