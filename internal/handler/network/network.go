package network

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openpeerlabs/escrow-backend/internal/chain"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
)

// NetworkView is the public shape of a network row: RPC endpoints and the
// arbitrator key material stay internal.
type NetworkView struct {
	ID       uint                `json:"id"`
	Name     string              `json:"name"`
	Family   model.NetworkFamily `json:"family"`
	IsActive bool                `json:"is_active"`
	Info     chain.Info          `json:"info"`
}

type networkHandler struct {
	registry *networkregistry.Registry
}

func New(registry *networkregistry.Registry) IHandler {
	return &networkHandler{registry: registry}
}

// GetNetworks lists the active networks with their adapter-described info.
func (h *networkHandler) GetNetworks(c *gin.Context) {
	networks, err := h.registry.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch networks"})
		return
	}

	views := make([]NetworkView, 0, len(networks))
	for i := range networks {
		adapter, err := chain.NewAdapter(networks[i].Family)
		if err != nil {
			continue
		}
		views = append(views, NetworkView{
			ID:       networks[i].ID,
			Name:     networks[i].Name,
			Family:   networks[i].Family,
			IsActive: networks[i].IsActive,
			Info:     adapter.NetworkInfo(&networks[i]),
		})
	}

	c.JSON(http.StatusOK, gin.H{"networks": views})
}
