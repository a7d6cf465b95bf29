package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/partsboard/internal/api/handlers"
	"github.com/your-org/partsboard/internal/auth"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/workspace"
)

type RouterConfig struct {
	Auth         *auth.Service
	CookieSecure bool
	Backend      remote.Source
	Workspaces   *workspace.Manager
	History      handlers.HistoryStore
	Receipts     handlers.ReceiptStore
	// Readiness probes; nil ones are not checked.
	DBPing    handlers.Pinger
	MinIOPing handlers.Pinger
	NATSPing  handlers.Pinger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DBPing, cfg.MinIOPing, cfg.NATSPing)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handlers.NewAuthHandler(cfg.Auth, cfg.Workspaces, cfg.CookieSecure)
	r.POST("/api/auth/login", authH.Login)
	r.POST("/api/auth/logout", authH.Logout)

	// Backend proxy: session cookie or a bearer token
	proxy := r.Group("/api")
	proxy.Use(auth.SessionMiddleware(cfg.Auth, true))
	proxyH := handlers.NewProxyHandler(cfg.Backend)
	proxy.GET("/customer", proxyH.Customers)
	proxy.GET("/customer/contactList", proxyH.Contacts)
	proxy.GET("/inspection", proxyH.Inspections)
	proxy.GET("/models", proxyH.Models)
	proxy.GET("/subparts", proxyH.Subparts)
	proxy.PUT("/parts-history/subparts", proxyH.UpdateSubpartsStatus)
	proxy.POST("/parts-history/subparts", proxyH.UpdateSubpartsStatus)

	// API v1 (session cookie only)
	v1 := r.Group("/v1")
	v1.Use(auth.SessionMiddleware(cfg.Auth, false))
	v1.GET("/me", authH.Me)

	wsH := handlers.NewWorkspaceHandler(cfg.Workspaces)
	ws := v1.Group("/workspace")
	ws.Use(wsH.Attach())
	ws.GET("/view", wsH.View)
	ws.GET("/query", wsH.Query)
	ws.POST("/query", wsH.UpdateQuery)
	ws.PUT("/query", wsH.LoadQuery)
	ws.POST("/search", wsH.Search)
	ws.POST("/inspections/:id/select", wsH.SelectInspection)
	ws.DELETE("/inspections/selected", wsH.ClearInspection)
	ws.POST("/models/:id/select", wsH.SelectModel)
	ws.DELETE("/models/selected", wsH.ClearModel)
	ws.POST("/models/:id/detail", wsH.ModelDetail)
	ws.POST("/subparts/:id/detail", wsH.SubpartDetail)
	ws.POST("/toggle/:flag", wsH.Toggle)
	ws.POST("/edit/begin", wsH.BeginEdit)
	ws.POST("/edit/stage", wsH.Stage)
	ws.POST("/edit/contacts", wsH.Contact)
	ws.POST("/edit/reason", wsH.Reason)
	ws.POST("/edit/confirm", wsH.Confirm)
	ws.POST("/edit/cancel", wsH.Cancel)
	ws.POST("/edit/submit", wsH.Submit)
	ws.POST("/refresh", wsH.Refresh)

	if cfg.History != nil {
		histH := handlers.NewHistoryHandler(cfg.History, cfg.Receipts)
		v1.GET("/history", histH.List)
		v1.GET("/history/receipts", histH.Receipts)
		v1.GET("/history/:id", histH.Get)
		v1.GET("/history/:id/receipt", histH.Receipt)
	}

	return r
}
