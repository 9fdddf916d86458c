package routes

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"worknote-platform/internal/ai"
	"worknote-platform/internal/config"
	"worknote-platform/internal/logger"
	"worknote-platform/middleware"
	"worknote-platform/services"
	"worknote-platform/utils"
)

type ragQueryRequest struct {
	Question string               `json:"question" binding:"required"`
	Scope    string               `json:"scope"`
	Params   services.ScopeParams `json:"params"`
	TopK     int                  `json:"top_k"`
}

// SetupRAGRoutes wires the question-answering and similarity endpoints.
func SetupRAGRoutes(router *gin.Engine, cfg *config.Config, rag *services.RAGService, retriever *services.SimilarityRetriever, store services.NoteStore) {
	router.POST("/rag/query", func(c *gin.Context) {
		var req ragQueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		scope := services.Scope(req.Scope)
		if req.Scope == "" {
			scope = services.ScopeGlobal
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		result, err := rag.Query(ctx, req.Question, services.RAGOptions{
			Scope:  scope,
			Params: req.Params,
			TopK:   req.TopK,
		})
		if err != nil {
			respondRAGError(c, err)
			return
		}

		c.JSON(200, result)
	})

	router.GET("/notes/:id/similar", func(c *gin.Context) {
		noteID := c.Param("id")
		topK := queryInt(c, "top_k", cfg.RAGTopK)
		minScore := queryFloat(c, "min_score", cfg.RAGMinScore)
		if topK <= 0 || topK > 50 {
			utils.RespondWithBadRequest(c, "top_k must be between 1 and 50", nil)
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		notes, err := store.FindByIDs(ctx, []string{noteID})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load note", nil)
			return
		}
		if len(notes) == 0 {
			utils.RespondWithNotFound(c, "Note not found")
			return
		}
		source := notes[0]

		queryText := source.Title
		if source.Body != "" {
			queryText += "\n\n" + source.Body
		}

		// Ask for one extra match since the note itself usually comes
		// back as its own best neighbor.
		matches, err := retriever.FindSimilar(ctx, queryText, topK+1, minScore, nil)
		if err != nil {
			respondRAGError(c, err)
			return
		}

		similar := make([]services.SimilarNote, 0, topK)
		for _, m := range matches {
			if m.NoteID == noteID {
				continue
			}
			similar = append(similar, m)
			if len(similar) == topK {
				break
			}
		}

		c.JSON(200, gin.H{
			"work_id": noteID,
			"similar": similar,
		})
	})
}

// SetupMinuteRoutes wires lexical meeting-minute search.
func SetupMinuteRoutes(router *gin.Engine, search *services.MinuteSearch) {
	router.GET("/minutes/search", func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			utils.RespondWithBadRequest(c, "Query parameter q is required", nil)
			return
		}
		limit := queryInt(c, "limit", 20)
		if limit <= 0 || limit > 100 {
			utils.RespondWithBadRequest(c, "limit must be between 1 and 100", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		matches, err := search.Search(ctx, q, limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Search failed", nil)
			return
		}

		c.JSON(200, gin.H{
			"query":   q,
			"matches": matches,
		})
	})
}

func respondRAGError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidScopeParameters),
		errors.Is(err, services.ErrInvalidParameters):
		utils.RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, ai.ErrEmbeddingUnavailable):
		utils.RespondWithProviderUnavailable(c, "Embedding provider is unavailable, try again later")
	case errors.Is(err, ai.ErrGenerationUnavailable):
		utils.RespondWithProviderUnavailable(c, "Generation provider is unavailable, try again later")
	default:
		logRAGFailure(c, err)
		utils.RespondWithInternalError(c, "Retrieval failed", nil)
	}
}

func logRAGFailure(c *gin.Context, err error) {
	// Malformed chunk ids point at index corruption, worth the loud log.
	msg := "retrieval error"
	if errors.Is(err, services.ErrMalformedChunkID) {
		msg = "vector index corruption"
	}
	logger.Error(msg, "error", err, "request_id", middleware.GetRequestID(c))
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
