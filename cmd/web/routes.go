package main

import (
	"net/http"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/httputil"
	"github.com/AdamBeresnev/olympics-draws/internal/live"
	"github.com/AdamBeresnev/olympics-draws/internal/middleware"
	"github.com/AdamBeresnev/olympics-draws/internal/service"
	users "github.com/AdamBeresnev/olympics-draws/internal/user"
	"github.com/AdamBeresnev/olympics-draws/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routerDeps struct {
	engine         *service.Engine
	sessionManager *scs.SessionManager
	hub            *live.Hub
	allowedOrigins []string
	devSessions    bool
}

type sessionRequest struct {
	ActorID  string     `json:"actorId"`
	Role     users.Role `json:"role"`
	SchoolID *uuid.UUID `json:"schoolId,omitempty"`
}

type createDrawRequest struct {
	EventID       uuid.UUID                `json:"eventId"`
	DrawType      bracket.DrawType         `json:"drawType"`
	SeedingMethod bracket.SeedingMethod    `json:"seedingMethod"`
	GroupSize     int                      `json:"groupSize,omitempty"`
	Slots         []int                    `json:"slots,omitempty"`
	Participants  []bracket.ParticipantRef `json:"participants,omitempty"`
}

type scoreRequest struct {
	Score1 string `json:"score1"`
	Score2 string `json:"score2"`
}

type completeRequest struct {
	WinnerRef bracket.ParticipantRef `json:"winnerRef"`
}

type completeResponse struct {
	Match *bracket.Match `json:"match"`
	Draw  *bracket.Draw  `json:"draw"`
}

func newRouter(deps routerDeps) http.Handler {
	engine := deps.engine
	sessionManager := deps.sessionManager

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.PeekSession(sessionManager))
		r.Use(middleware.RequireActor)

		r.Get("/ws/draws/{id}", deps.hub.Handler(deps.allowedOrigins, func(r *http.Request) (uuid.UUID, error) {
			return uuid.Parse(chi.URLParam(r, "id"))
		}))
	})

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.LoadActor(sessionManager))

		// Trusts the claimed actor, so it only exists in development.
		if deps.devSessions {
			r.Post("/session", func(w http.ResponseWriter, r *http.Request) {
				var req sessionRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				actor := users.Actor{ID: req.ActorID, Role: req.Role, SchoolID: req.SchoolID}
				if err := middleware.StartSession(sessionManager, r, actor); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, actor)
			})
		}

		r.Delete("/session", func(w http.ResponseWriter, r *http.Request) {
			if err := sessionManager.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to destroy session", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)

			r.Get("/draws", func(w http.ResponseWriter, r *http.Request) {
				eventID, err := uuid.Parse(r.URL.Query().Get("eventId"))
				if err != nil {
					httputil.BadRequest(w, "Invalid event ID", err)
					return
				}
				draws, err := engine.ListDraws(r.Context(), eventID)
				if err != nil {
					httputil.ServiceError(w, "Failed to list draws", err)
					return
				}
				if draws == nil {
					draws = []bracket.Draw{}
				}
				httputil.WriteJSON(w, http.StatusOK, draws)
			})

			r.Get("/draws/{id}", func(w http.ResponseWriter, r *http.Request) {
				drawID, ok := parseID(w, r, "id", "Invalid draw ID")
				if !ok {
					return
				}
				draw, err := engine.GetDraw(r.Context(), drawID)
				if err != nil {
					httputil.ServiceError(w, "Failed to get draw", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, draw)
			})

			r.Get("/draws/{id}/standings", func(w http.ResponseWriter, r *http.Request) {
				drawID, ok := parseID(w, r, "id", "Invalid draw ID")
				if !ok {
					return
				}
				standings, err := engine.Standings(r.Context(), drawID)
				if err != nil {
					httputil.ServiceError(w, "Failed to get standings", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, standings)
			})

			r.Get("/draws/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
				drawID, ok := parseID(w, r, "id", "Invalid draw ID")
				if !ok {
					return
				}
				draw, err := engine.GetDraw(r.Context(), drawID)
				if err != nil {
					httputil.ServiceError(w, "Failed to get draw", err)
					return
				}
				if err := views.Render(w, r, views.BracketPage(views.PrepareBracketData(draw))); err != nil {
					httputil.InternalServerError(w, "Failed to render bracket", err)
				}
			})

			r.Put("/draws/{id}/matches/{matchId}/start", func(w http.ResponseWriter, r *http.Request) {
				drawID, matchID, ok := parseMatchPath(w, r)
				if !ok {
					return
				}
				match, err := engine.StartMatch(r.Context(), drawID, matchID)
				if err != nil {
					httputil.ServiceError(w, "Failed to start match", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, match)
			})

			r.Put("/draws/{id}/matches/{matchId}/score", func(w http.ResponseWriter, r *http.Request) {
				drawID, matchID, ok := parseMatchPath(w, r)
				if !ok {
					return
				}
				var req scoreRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				match, err := engine.RecordScore(r.Context(), drawID, matchID, req.Score1, req.Score2)
				if err != nil {
					httputil.ServiceError(w, "Failed to record score", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, match)
			})

			r.Put("/draws/{id}/matches/{matchId}/complete", func(w http.ResponseWriter, r *http.Request) {
				drawID, matchID, ok := parseMatchPath(w, r)
				if !ok {
					return
				}
				var req completeRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				match, draw, err := engine.CompleteMatch(r.Context(), drawID, matchID, req.WinnerRef)
				if err != nil {
					httputil.ServiceError(w, "Failed to complete match", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, completeResponse{Match: match, Draw: draw})
			})

			// Structural changes are reserved for super admins.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(users.RoleSuperAdmin))

				r.Post("/draws", func(w http.ResponseWriter, r *http.Request) {
					var req createDrawRequest
					if err := httputil.ReadJSON(w, r, &req); err != nil {
						httputil.BadRequest(w, err.Error(), err)
						return
					}
					draw, err := engine.CreateDraw(r.Context(), service.CreateDrawInput{
						EventID:       req.EventID,
						DrawType:      req.DrawType,
						SeedingMethod: req.SeedingMethod,
						GroupSize:     req.GroupSize,
						Slots:         req.Slots,
						Participants:  req.Participants,
					})
					if err != nil {
						httputil.ServiceError(w, "Failed to create draw", err)
						return
					}
					httputil.WriteJSON(w, http.StatusCreated, draw)
				})

				r.Post("/draws/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
					drawID, ok := parseID(w, r, "id", "Invalid draw ID")
					if !ok {
						return
					}
					draw, err := engine.Publish(r.Context(), drawID)
					if err != nil {
						httputil.ServiceError(w, "Failed to publish draw", err)
						return
					}
					httputil.WriteJSON(w, http.StatusOK, draw)
				})

				r.Delete("/draws/{id}", func(w http.ResponseWriter, r *http.Request) {
					drawID, ok := parseID(w, r, "id", "Invalid draw ID")
					if !ok {
						return
					}
					if err := engine.DeleteDraw(r.Context(), drawID); err != nil {
						httputil.ServiceError(w, "Failed to delete draw", err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})
			})
		})
	})

	return r
}

func parseID(w http.ResponseWriter, r *http.Request, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.BadRequest(w, msg, err)
		return uuid.Nil, false
	}
	return id, true
}

func parseMatchPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	drawID, ok := parseID(w, r, "id", "Invalid draw ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	matchID, ok := parseID(w, r, "matchId", "Invalid match ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return drawID, matchID, true
}
