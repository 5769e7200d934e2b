package stats

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetDeadlineCancellations(c *gin.Context)
	GetAutoCancellations(c *gin.Context)
}
