package http

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Punk/internal/adapters/signal"
	"github.com/dkeye/Punk/internal/app/orch"
	"github.com/dkeye/Punk/internal/config"
	"github.com/dkeye/Punk/internal/domain"
)

// TokenIssuer signs tokens for freshly created guest identities.
type TokenIssuer interface {
	Issue(u domain.User) (string, error)
}

type Handler struct {
	Orch   *orch.Orchestrator
	Issuer TokenIssuer
	Signal *signal.SignalWSController
	Cfg    *config.Config
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, issuer TokenIssuer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := signal.NewRoomRateLimiter(cfg.RateLimit.Messages, cfg.RateLimit.Interval)
	go sweepLimiter(ctx, limiter, cfg.RateLimit.Interval)

	h := &Handler{
		Orch:   o,
		Issuer: issuer,
		Cfg:    cfg,
		Signal: signal.NewSignalWSController(o, limiter, signal.Options{
			ReadLimit:  cfg.ReadLimit,
			PingPeriod: cfg.PingPeriod,
			PongWait:   cfg.PongWait,
			SendBuffer: cfg.SendBuffer,
		}),
	}

	r := gin.New()
	r.Use(AccessLog())
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORS.Origins)))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.TokenTTL / time.Second), HttpOnly: true})
	r.Use(sessions.Sessions("PunkSessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.POST("/session", h.createSession)

	authed := api.Group("", h.RequireUser())
	authed.GET("/session", h.whoAmI)
	authed.GET("/rooms/public", h.listPublicRooms)
	authed.GET("/rooms/search", h.searchRooms)
	authed.POST("/rooms", h.createRoom)
	authed.GET("/rooms/:code", h.getRoom)
	authed.GET("/rooms/:code/messages", h.listMessages)
	authed.POST("/rooms/:code/messages", h.sendMessage)
	authed.DELETE("/rooms/:code/messages/:index", h.deleteMessage)
	authed.POST("/rooms/:code/upload", h.upload)
	authed.POST("/private/:userId", h.openPrivateRoom)
	authed.GET("/recent-chats", h.recentChats)
	authed.GET("/notifications", h.notifications)
	authed.POST("/notifications/seen", h.markNotificationsSeen)

	authed.GET("/ws", func(c *gin.Context) {
		user := currentUser(c)
		log.Info().Str("module", "adapters.http").Str("user", string(user.ID)).Msg("ws endpoint hit")
		h.Signal.HandleSignal(ctx, c.Writer, c.Request, user, domain.RoomCode(c.Query("room")))
	})

	r.GET("/media/:code/:name", h.RequireUser(), h.media)

	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Range")
	cc.ExposeHeaders = []string{"Content-Range", "Accept-Ranges"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

func sweepLimiter(ctx context.Context, limiter *signal.RoomRateLimiter, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every * 10)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			limiter.Sweep()
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	rooms, conns := h.Orch.Stats()
	c.JSON(200, gin.H{"status": "ok", "rooms": rooms, "connections": conns})
}
