package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/http/response"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/services"
)

type VeracityHandler struct {
	scorer services.VeracityScorer
}

func NewVeracityHandler(scorer services.VeracityScorer) *VeracityHandler {
	return &VeracityHandler{scorer: scorer}
}

type recomputeRequest struct {
	Reason string `json:"reason"`
}

func (h *VeracityHandler) Recompute(c *gin.Context) {
	targetType := types.TargetType(c.Param("targetType"))
	if !targetType.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_target_type", pkgerrors.ErrInvalidParameter)
		return
	}
	targetID, ok := parseUUIDParam(c, "targetId")
	if !ok {
		return
	}

	var req recomputeRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "manual_recompute"
	}

	rec, err := h.scorer.Recompute(c.Request.Context(), targetType, targetID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rec)
}
