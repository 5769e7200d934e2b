package trade

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetTrades(c *gin.Context)
	GetTrade(c *gin.Context)
}
