package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zhiyuanbang/gaokao-backend/internal/http/response"
	"github.com/zhiyuanbang/gaokao-backend/internal/services"
)

type AdminHandler struct {
	repairService services.RepairService
}

func NewAdminHandler(repairService services.RepairService) *AdminHandler {
	return &AdminHandler{repairService: repairService}
}

// POST /api/admin/volunteers/repair
func (ah *AdminHandler) RepairVolunteers(c *gin.Context) {
	fixed, err := ah.repairService.RepairAll(c.Request.Context(), nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"fixed": fixed})
}
