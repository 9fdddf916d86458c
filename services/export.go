package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"worknote-platform/models"
)

// ExportRequest filters which notes end up in the workbook.
type ExportRequest struct {
	Category string    `json:"category,omitempty"`
	DeptName string    `json:"dept_name,omitempty"`
	DateFrom time.Time `json:"date_from,omitempty"`
	DateTo   time.Time `json:"date_to,omitempty"`
	Limit    int       `json:"limit,omitempty"` // 0 = no limit
}

// ExportService builds xlsx workbooks of notes with their todos.
type ExportService struct {
	notes *mongo.Collection
	todos *mongo.Collection
}

func NewExportService(db *mongo.Database) *ExportService {
	return &ExportService{
		notes: db.Collection("work_notes"),
		todos: db.Collection("todos"),
	}
}

// ExportNotes returns an xlsx file with a "Work Notes" sheet and a "Todos"
// sheet, newest notes first.
func (es *ExportService) ExportNotes(ctx context.Context, req ExportRequest) ([]byte, error) {
	filter := bson.M{"deleted": bson.M{"$ne": true}}
	if req.Category != "" {
		filter["category"] = req.Category
	}
	if req.DeptName != "" {
		filter["dept_name"] = req.DeptName
	}
	if !req.DateFrom.IsZero() || !req.DateTo.IsZero() {
		dateFilter := bson.M{}
		if !req.DateFrom.IsZero() {
			dateFilter["$gte"] = req.DateFrom
		}
		if !req.DateTo.IsZero() {
			dateFilter["$lte"] = req.DateTo
		}
		filter["created_at"] = dateFilter
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cursor, err := es.notes.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	var notes []models.WorkNote
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}

	noteIDs := make([]string, len(notes))
	for i, n := range notes {
		noteIDs[i] = n.ID.Hex()
	}
	todos, err := es.loadTodos(ctx, noteIDs)
	if err != nil {
		return nil, err
	}

	return buildWorkbook(notes, todos)
}

func (es *ExportService) loadTodos(ctx context.Context, noteIDs []string) ([]models.Todo, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}
	cursor, err := es.todos.Find(ctx, bson.M{"note_id": bson.M{"$in": noteIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	var todos []models.Todo
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}
	return todos, nil
}

func buildWorkbook(notes []models.WorkNote, todos []models.Todo) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	notesSheet := "Work Notes"
	index, err := f.NewSheet(notesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	noteHeaders := []string{
		"ID", "Title", "Body", "Category", "Department", "Project ID",
		"People", "Created At", "Updated At",
	}
	for i, header := range noteHeaders {
		f.SetCellValue(notesSheet, fmt.Sprintf("%c1", 'A'+i), header)
	}
	for rowIdx, note := range notes {
		row := rowIdx + 2
		f.SetCellValue(notesSheet, fmt.Sprintf("A%d", row), note.ID.Hex())
		f.SetCellValue(notesSheet, fmt.Sprintf("B%d", row), note.Title)
		f.SetCellValue(notesSheet, fmt.Sprintf("C%d", row), note.Body)
		f.SetCellValue(notesSheet, fmt.Sprintf("D%d", row), note.Category)
		f.SetCellValue(notesSheet, fmt.Sprintf("E%d", row), note.DeptName)
		f.SetCellValue(notesSheet, fmt.Sprintf("F%d", row), note.ProjectID)
		f.SetCellValue(notesSheet, fmt.Sprintf("G%d", row), strings.Join(note.PersonIDs, ", "))
		f.SetCellValue(notesSheet, fmt.Sprintf("H%d", row), note.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(notesSheet, fmt.Sprintf("I%d", row), note.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	f.SetColWidth(notesSheet, "B", "C", 40)

	todosSheet := "Todos"
	if _, err := f.NewSheet(todosSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	todoHeaders := []string{"ID", "Note ID", "Text", "Status", "Due Date", "Created At"}
	for i, header := range todoHeaders {
		f.SetCellValue(todosSheet, fmt.Sprintf("%c1", 'A'+i), header)
	}
	for rowIdx, todo := range todos {
		row := rowIdx + 2
		f.SetCellValue(todosSheet, fmt.Sprintf("A%d", row), todo.ID.Hex())
		f.SetCellValue(todosSheet, fmt.Sprintf("B%d", row), todo.NoteID)
		f.SetCellValue(todosSheet, fmt.Sprintf("C%d", row), todo.Text)
		f.SetCellValue(todosSheet, fmt.Sprintf("D%d", row), todo.Status)
		if todo.DueDate != nil {
			f.SetCellValue(todosSheet, fmt.Sprintf("E%d", row), todo.DueDate.Format("2006-01-02"))
		}
		f.SetCellValue(todosSheet, fmt.Sprintf("F%d", row), todo.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	f.SetColWidth(todosSheet, "C", "C", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
