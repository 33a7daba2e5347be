// Package web is the thin serving surface around the shared store: the
// cached read endpoints the front end polls and the internal endpoints
// operators and sync jobs call. The full CRUD/auth API lives elsewhere.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"clubsync/internal/cache"
	appLog "clubsync/internal/log"
	"clubsync/internal/model"
	"clubsync/internal/store"
	"clubsync/internal/syncer"
)

// Server wires the Fiber app to the store, the response cache and the
// sync engine.
type Server struct {
	app    *fiber.App
	store  store.Store
	cache  *cache.Cache
	engine *syncer.Engine

	// secret guards the internal endpoints; empty disables them.
	secret string
}

// New constructs the Server and registers all routes.
func New(st store.Store, c *cache.Cache, engine *syncer.Engine, secret string) *Server {
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		store:  st,
		cache:  c,
		engine: engine,
		secret: secret,
	}
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/events", s.handleListEvents)
	s.app.Get("/clubs", s.handleListClubs)

	internal := s.app.Group("/internal", s.requireSyncSecret)
	internal.Post("/cache/clear", s.handleCacheClear)
	internal.Post("/sync", s.handleSync)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// eventResponse is the joined shape the front end consumes.
type eventResponse struct {
	ID             uuid.UUID `json:"id"`
	UID            string    `json:"uid"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ClubID         uuid.UUID `json:"club_id"`
	ClubName       string    `json:"club_name"`
	Type           string    `json:"type"`
	RequiresRSVP   bool      `json:"requires_rsvp"`
	RSVPLink       *string   `json:"rsvp_link"`
	ManuallyEdited bool      `json:"manually_edited"`
	Collaborators  []string  `json:"collaborators"`
}

func (s *Server) handleListEvents(c *fiber.Ctx) error {
	if cached := s.cache.Get(cache.KeyEventsAll); cached != nil {
		return c.JSON(cached)
	}

	events, err := s.store.ListEvents(c.UserContext())
	if err != nil {
		appLog.Error("listing events failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp := eventResponse{
			ID:             ev.ID,
			UID:            ev.UID,
			Title:          ev.Title,
			Description:    ev.Description,
			Location:       ev.Location,
			StartTime:      ev.StartTime,
			EndTime:        ev.EndTime,
			ClubID:         ev.ClubID,
			Type:           model.CategoryOther,
			RequiresRSVP:   ev.RequiresRSVP,
			RSVPLink:       ev.RSVPLink,
			ManuallyEdited: ev.ManuallyEdited,
			Collaborators:  []string{},
		}
		if ev.Club != nil {
			resp.ClubName = ev.Club.Name
		}
		// Deleted or unconfigured categories present as "Other".
		if ev.Category != nil {
			resp.Type = ev.Category.Name
		}
		for _, collab := range ev.Collaborations {
			if collab.Club != nil {
				resp.Collaborators = append(resp.Collaborators, collab.Club.Name)
			}
		}
		out = append(out, resp)
	}

	s.cache.Set(cache.KeyEventsAll, out)
	return c.JSON(out)
}

func (s *Server) handleListClubs(c *fiber.Ctx) error {
	if cached := s.cache.Get(cache.KeyClubsAll); cached != nil {
		return c.JSON(cached)
	}

	clubs, err := s.store.ListClubs(c.UserContext())
	if err != nil {
		appLog.Error("listing clubs failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	s.cache.Set(cache.KeyClubsAll, clubs)
	return c.JSON(clubs)
}

// requireSyncSecret guards the internal endpoints with a shared secret
// header rather than a user JWT; the callers are sync jobs and
// operators, not browsers.
func (s *Server) requireSyncSecret(c *fiber.Ctx) error {
	if s.secret == "" || c.Get("X-Sync-Secret") != s.secret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

func (s *Server) handleCacheClear(c *fiber.Ctx) error {
	s.cache.InvalidateAll()
	return c.JSON(fiber.Map{"status": "ok", "cleared": "all"})
}

type syncRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// handleSync triggers a synchronous sync run: all clubs by default, or
// a single {name, url} pair when one is supplied in the body.
func (s *Server) handleSync(c *fiber.Ctx) error {
	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	if req.Name != "" && req.URL != "" {
		stats, err := s.engine.SyncOne(c.UserContext(), req.Name, req.URL)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "stats": stats})
	}

	result, err := s.engine.SyncAll(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok", "result": result})
}
