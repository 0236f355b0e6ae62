package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/pkg/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns the gin engine serving the ledger REST API and the
// prometheus metrics gathered by the given gatherer.
func NewRouter(
	svc application.LedgerService,
	metrics *stats.LedgerMetrics,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := newLedgerHandler(svc, metrics)

	router := gin.New()
	router.Use(requestID(), logger(), recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	))

	v1 := router.Group("/v1")
	{
		v1.POST("/sign_up", h.SignUp)
		v1.GET("/master", h.GetMasterInfo)
		v1.POST("/pending/refresh", h.RefreshPending)

		accounts := v1.Group("/accounts/:id")
		{
			accounts.GET("/balance", h.GetBalance)
			accounts.POST("/address", h.IssueAddress)
			accounts.POST("/spend", h.Spend)
			accounts.POST("/transfer/from_master", h.TransferFromMaster)
			accounts.POST("/transfer/to_master", h.TransferToMaster)
			accounts.GET("/pending", h.GetPending)
		}
	}

	return router
}
