package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eddowding/abelique-matching/internal/observability"
	"github.com/eddowding/abelique-matching/internal/queue"
	"github.com/eddowding/abelique-matching/internal/storage"
)

type AdminHandler struct {
	db       *storage.PostgresStore
	producer *queue.Producer
}

func NewAdminHandler(db *storage.PostgresStore, producer *queue.Producer) *AdminHandler {
	return &AdminHandler{db: db, producer: producer}
}

// BackfillEmbeddings enqueues a regeneration task for every member with
// profile text but no stored vector. The worker drains the queue.
func (h *AdminHandler) BackfillEmbeddings(c *gin.Context) {
	ids, err := h.db.MembersMissingEmbedding(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	enqueued := 0
	for _, id := range ids {
		if err := h.producer.EnqueueEmbedding(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    err.Error(),
				"enqueued": enqueued,
			})
			return
		}
		enqueued++
	}

	if depth, err := h.producer.QueueDepth(c.Request.Context()); err == nil {
		observability.BackfillQueueDepth.Set(float64(depth))
	}

	c.JSON(http.StatusAccepted, gin.H{"enqueued": enqueued})
}
