package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking_ledger/internal/api/handler"
	"parking_ledger/internal/api/middleware"
	"parking_ledger/internal/service"
)

func SetupRouter(ledger *service.Ledger, as *service.AuthService, authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wsHandler := handler.NewWebSocketHandler(wsManager, ledger)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	r.POST("/auth/login", authHandler.Login)

	v1 := r.Group("/api/v1")
	{
		lotH := handler.NewParkingLotHandler(ledger)
		v1.GET("/status", lotH.GetParkingStatus)
		v1.GET("/lots/:id", lotH.GetParkingLotByID)
		v1.GET("/lots/:id/active-sessions", lotH.GetActiveSessionsByLotID)

		sessionH := handler.NewParkingSessionHandler(ledger)
		v1.GET("/cars", sessionH.GetAllCarInfo)
		v1.GET("/sessions/:car_number", sessionH.GetSession)

		desk := v1.Group("")
		desk.Use(authMw.Authenticate())
		{
			desk.POST("/entries", sessionH.RegisterEntry)
			desk.POST("/exits", sessionH.RegisterExit)
		}
	}
	return r
}
