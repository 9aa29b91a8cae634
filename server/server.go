// Package server is the read-only debug and play-mode HTTP surface over a
// world. It drives the same public API as any other caller; no privileged
// internal surface exists.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"github.com/vibe-engine/scenecore"
)

const defaultPort = "4040"

type Server struct {
	world *scenecore.World
	app   *fiber.App
	port  string
}

type Option func(*Server)

func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}

func New(world *scenecore.World, opts ...Option) *Server {
	s := &Server{
		world: world,
		app:   fiber.New(fiber.Config{DisableStartupMessage: true}),
		port:  defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/debug/state", s.handleDebugState)
	s.app.Get("/prefabs", s.handlePrefabs)
	s.app.Post("/play/start", s.handlePlayStart)
	s.app.Post("/play/stop", s.handlePlayStop)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Serve() error {
	s.world.Logger().Info().Str("port", s.port).Msg("debug server listening")
	return eris.Wrap(s.app.Listen(":"+s.port), "")
}

func (s *Server) Shutdown() error {
	return eris.Wrap(s.app.Shutdown(), "")
}
