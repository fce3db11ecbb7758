package http

import (
	"net/http"

	"maple-boss-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewHandlers(svc)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Get("/codes", h.Codes)
		r.Get("/codes/{code}", h.DecodeCode)

		r.Get("/registry", h.Registry)
		r.Get("/registry/crystal", h.CrystalValue)
		r.Get("/registry/id", h.RegistryID)
		r.Get("/registry/history", h.CrystalHistory)

		r.Post("/config/encode", h.Encode)
		r.Post("/config/decode", h.Decode)

		r.Get("/characters", h.Characters)
		r.Get("/characters/{name}/bosses", h.CharacterBosses)
		r.Put("/characters/{name}/bosses", h.SaveCharacterBosses)
		r.Delete("/characters/{name}", h.DeleteCharacter)

		r.Post("/refresh", h.Refresh)
	})

	return r
}
