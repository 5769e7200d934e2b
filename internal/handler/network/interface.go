package network

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetNetworks(c *gin.Context)
}
