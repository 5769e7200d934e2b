package escrow

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetEscrows(c *gin.Context)
	GetEscrowEvents(c *gin.Context)
}
