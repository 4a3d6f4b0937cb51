package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssovee/Open-Data-API/relay"
)

// ShareStats reports how many file-relay rooms and members are live. Room
// uids stay private since any peer holding one can join the transfer.
func ShareStats(hub *relay.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.Stats())
	}
}
