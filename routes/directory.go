package routes

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"worknote-platform/models"
	"worknote-platform/utils"
)

// SetupDirectoryRoutes wires the read-only reference listings that scope
// parameters point at: people, departments, projects and meeting minutes.
func SetupDirectoryRoutes(router *gin.Engine, db *mongo.Database) {
	persons := db.Collection("persons")
	departments := db.Collection("departments")
	projects := db.Collection("projects")
	minutes := db.Collection("meeting_minutes")

	router.GET("/persons", func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		filter := bson.M{}
		if dept := c.Query("dept_name"); dept != "" {
			filter["dept_name"] = dept
		}
		cursor, err := persons.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list persons", nil)
			return
		}
		results := []models.Person{}
		if err := cursor.All(ctx, &results); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode persons", nil)
			return
		}
		c.JSON(200, gin.H{"persons": results})
	})

	router.GET("/departments", func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		cursor, err := departments.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list departments", nil)
			return
		}
		results := []models.Department{}
		if err := cursor.All(ctx, &results); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode departments", nil)
			return
		}
		c.JSON(200, gin.H{"departments": results})
	})

	router.GET("/projects", func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		cursor, err := projects.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list projects", nil)
			return
		}
		results := []models.Project{}
		if err := cursor.All(ctx, &results); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode projects", nil)
			return
		}
		c.JSON(200, gin.H{"projects": results})
	})

	router.GET("/minutes", func(c *gin.Context) {
		limit := queryInt(c, "limit", 50)
		if limit <= 0 || limit > 200 {
			utils.RespondWithBadRequest(c, "limit must be between 1 and 200", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		cursor, err := minutes.Find(ctx, bson.M{}, options.Find().
			SetSort(bson.M{"held_at": -1}).
			SetLimit(int64(limit)))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list minutes", nil)
			return
		}
		results := []models.MeetingMinute{}
		if err := cursor.All(ctx, &results); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode minutes", nil)
			return
		}
		c.JSON(200, gin.H{"minutes": results})
	})
}
