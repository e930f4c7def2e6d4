package routes

import (
	"net/http"

	"storepos/controllers"
	"storepos/handlers"
	"storepos/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitializeRoutes(router *gin.Engine, cashier *controllers.CashierController, pos *handlers.POSHandler, signingKey []byte, gatherer prometheus.Gatherer) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	till := router.Group("/pos")
	till.Use(middleware.AuthMiddleware(signingKey))
	{
		till.POST("/sessions", cashier.OpenSession)
		till.GET("/sessions/:id", cashier.GetSession)
		till.DELETE("/sessions/:id", cashier.DiscardSession)
		till.POST("/sessions/:id/lines", cashier.AddLine)
		till.PUT("/sessions/:id/lines", cashier.UpdateLine)
		till.DELETE("/sessions/:id/lines", cashier.RemoveLine)
		till.POST("/sessions/:id/returns", cashier.ReturnLine)
		till.POST("/sessions/:id/verify", cashier.VerifyReservation)
		till.PUT("/sessions/:id/customer", cashier.SetCustomer)
		till.PUT("/sessions/:id/payment", cashier.SetPayment)
		till.POST("/sessions/:id/checkout", cashier.Checkout)

		till.GET("/products", pos.GetProducts)
		till.GET("/customers", pos.GetCustomer)
		till.POST("/customers/settle", pos.SettleCredit)
		till.POST("/returns", pos.ProcessReturn)
		till.GET("/sales", pos.GetSales)
	}
}
