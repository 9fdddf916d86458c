package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"worknote-platform/internal/logger"
	"worknote-platform/internal/queue"
	"worknote-platform/models"
	"worknote-platform/services"
	"worknote-platform/utils"
)

type notePayload struct {
	Title     string   `json:"title" binding:"required"`
	Body      string   `json:"body"`
	Category  string   `json:"category"`
	PersonIDs []string `json:"person_ids"`
	DeptName  string   `json:"dept_name"`
	ProjectID string   `json:"project_id"`
}

// SetupNoteRoutes wires the note CRUD endpoints. Writes that change
// indexable content enqueue a background index task rather than embedding
// inline.
func SetupNoteRoutes(router *gin.Engine, db *mongo.Database, taskClient *asynq.Client, exporter *services.ExportService) {
	notes := db.Collection("work_notes")

	router.POST("/notes", func(c *gin.Context) {
		var req notePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		now := time.Now().UTC()
		note := models.WorkNote{
			Title:     req.Title,
			Body:      req.Body,
			Category:  req.Category,
			PersonIDs: req.PersonIDs,
			DeptName:  req.DeptName,
			ProjectID: req.ProjectID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		res, err := notes.InsertOne(ctx, note)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create note", nil)
			return
		}
		note.ID = res.InsertedID.(primitive.ObjectID)

		enqueueIndex(taskClient, note.ID.Hex())
		c.JSON(201, note)
	})

	router.GET("/notes", func(c *gin.Context) {
		filter := bson.M{"deleted": bson.M{"$ne": true}}
		if category := c.Query("category"); category != "" {
			filter["category"] = category
		}
		if dept := c.Query("dept_name"); dept != "" {
			filter["dept_name"] = dept
		}
		if person := c.Query("person_id"); person != "" {
			filter["person_ids"] = person
		}
		limit := queryInt(c, "limit", 50)
		if limit <= 0 || limit > 200 {
			utils.RespondWithBadRequest(c, "limit must be between 1 and 200", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		cursor, err := notes.Find(ctx, filter, options.Find().
			SetSort(bson.M{"created_at": -1}).
			SetLimit(int64(limit)))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list notes", nil)
			return
		}
		results := []models.WorkNote{}
		if err := cursor.All(ctx, &results); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode notes", nil)
			return
		}

		c.JSON(200, gin.H{"notes": results, "count": len(results)})
	})

	router.GET("/notes/:id", func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid note id", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		var note models.WorkNote
		err = notes.FindOne(ctx, bson.M{"_id": objID, "deleted": bson.M{"$ne": true}}).Decode(&note)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "Note not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load note", nil)
			return
		}

		c.JSON(200, note)
	})

	router.PUT("/notes/:id", func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid note id", nil)
			return
		}
		var req notePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		var before models.WorkNote
		err = notes.FindOne(ctx, bson.M{"_id": objID, "deleted": bson.M{"$ne": true}}).Decode(&before)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "Note not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load note", nil)
			return
		}

		update := bson.M{
			"title":      req.Title,
			"body":       req.Body,
			"category":   req.Category,
			"person_ids": req.PersonIDs,
			"dept_name":  req.DeptName,
			"project_id": req.ProjectID,
			"updated_at": time.Now().UTC(),
		}
		if _, err := notes.UpdateByID(ctx, objID, bson.M{"$set": update}); err != nil {
			utils.RespondWithInternalError(c, "Failed to update note", nil)
			return
		}

		// Scope metadata lives on every chunk, so any field change means
		// the vectors need rewriting, not just title/body edits.
		contentChanged := before.Title != req.Title ||
			before.Body != req.Body ||
			before.Category != req.Category ||
			before.DeptName != req.DeptName ||
			before.ProjectID != req.ProjectID ||
			!equalStrings(before.PersonIDs, req.PersonIDs)
		if contentChanged {
			enqueueIndex(taskClient, objID.Hex())
		}

		c.JSON(200, gin.H{"id": objID.Hex(), "updated": true})
	})

	router.DELETE("/notes/:id", func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid note id", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		res, err := notes.UpdateByID(ctx, objID, bson.M{"$set": bson.M{
			"deleted":    true,
			"updated_at": time.Now().UTC(),
		}})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete note", nil)
			return
		}
		if res.MatchedCount == 0 {
			utils.RespondWithNotFound(c, "Note not found")
			return
		}

		if task, err := queue.NewNoteDeindexTask(objID.Hex()); err == nil {
			if _, err := taskClient.Enqueue(task); err != nil {
				logger.Warn("failed to enqueue deindex task", "note_id", objID.Hex(), "error", err)
			}
		}

		c.JSON(200, gin.H{"id": objID.Hex(), "deleted": true})
	})

	// Lives under /export because /notes/:id already claims that segment.
	router.GET("/export/notes", func(c *gin.Context) {
		req := services.ExportRequest{
			Category: c.Query("category"),
			DeptName: c.Query("dept_name"),
			Limit:    queryInt(c, "limit", 0),
		}
		if from := c.Query("date_from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				utils.RespondWithBadRequest(c, "date_from must be YYYY-MM-DD", nil)
				return
			}
			req.DateFrom = t
		}
		if to := c.Query("date_to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				utils.RespondWithBadRequest(c, "date_to must be YYYY-MM-DD", nil)
				return
			}
			req.DateTo = t.Add(24*time.Hour - time.Second)
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, err := exporter.ExportNotes(ctx, req)
		if err != nil {
			logger.Error("export failed", "error", err)
			utils.RespondWithInternalError(c, "Export failed", nil)
			return
		}

		filename := "worknotes-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	})
}

func enqueueIndex(taskClient *asynq.Client, noteID string) {
	task, err := queue.NewNoteIndexTask(noteID)
	if err != nil {
		logger.Error("failed to build index task", "note_id", noteID, "error", err)
		return
	}
	if _, err := taskClient.Enqueue(task); err != nil {
		logger.Warn("failed to enqueue index task", "note_id", noteID, "error", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
