package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openverity/verigraph-backend/internal/http/response"
	"github.com/openverity/verigraph-backend/internal/services"
)

type TraversalHandler struct {
	paths    services.PathFinder
	subgraph services.SubgraphExpander
	walker   services.RelationshipWalker
	ancestry services.AncestryTracer
	ranking  services.RankingService
}

func NewTraversalHandler(
	paths services.PathFinder,
	subgraph services.SubgraphExpander,
	walker services.RelationshipWalker,
	ancestry services.AncestryTracer,
	ranking services.RankingService,
) *TraversalHandler {
	return &TraversalHandler{
		paths:    paths,
		subgraph: subgraph,
		walker:   walker,
		ancestry: ancestry,
		ranking:  ranking,
	}
}

func (h *TraversalHandler) FindPath(c *gin.Context) {
	sourceID, ok := parseUUIDQuery(c, "source")
	if !ok {
		return
	}
	targetID, ok := parseUUIDQuery(c, "target")
	if !ok {
		return
	}
	maxDepth, ok := queryInt(c, "maxDepth", services.DefaultPathDepth)
	if !ok {
		return
	}
	minVeracity, ok := queryFloat(c, "minVeracity", services.DefaultMinVeracity)
	if !ok {
		return
	}

	res, err := h.paths.FindPath(c.Request.Context(), sourceID, targetID, maxDepth, minVeracity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *TraversalHandler) GetSubgraph(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	depth, ok := queryInt(c, "depth", services.DefaultSubgraphDepth)
	if !ok {
		return
	}
	minVeracity, ok := queryFloat(c, "minVeracity", services.DefaultMinVeracity)
	if !ok {
		return
	}
	maxNodes, ok := queryInt(c, "maxNodes", services.DefaultSubgraphNodes)
	if !ok {
		return
	}
	direction := services.Direction(c.DefaultQuery("direction", string(services.DirectionBoth)))

	res, err := h.subgraph.GetSubgraph(c.Request.Context(), nodeID, depth, direction, minVeracity, maxNodes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *TraversalHandler) FindRelatedNodes(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	depth, ok := queryInt(c, "depth", services.DefaultWalkDepth)
	if !ok {
		return
	}
	minVeracity, ok := queryFloat(c, "minVeracity", services.DefaultMinVeracity)
	if !ok {
		return
	}

	res, err := h.walker.FindRelatedNodes(c.Request.Context(), nodeID, c.Query("edgeTypeId"), depth, minVeracity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *TraversalHandler) GetNodeAncestors(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	maxDepth, ok := queryInt(c, "maxDepth", services.DefaultAncestryDepth)
	if !ok {
		return
	}

	res, err := h.ancestry.GetNodeAncestors(c.Request.Context(), nodeID, maxDepth)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *TraversalHandler) GetTrustedNeighbors(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", services.DefaultTrustedLimit)
	if !ok {
		return
	}
	minVeracity, ok := queryFloat(c, "minVeracity", services.DefaultTrustedMinVeracity)
	if !ok {
		return
	}

	res, err := h.ranking.GetHighVeracityRelatedNodes(c.Request.Context(), nodeID, limit, minVeracity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"neighbors": res})
}

func (h *TraversalHandler) GetNodeStatistics(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.ranking.GetNodeStatistics(c.Request.Context(), nodeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
