package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NoteChunkIndex is a denormalized note chunk for Atlas $vectorSearch.
// Keeping a separate collection lets the vector index carry scope metadata
// without touching the notes collection. Chunk text is a derived artifact;
// the authoritative body always lives on the note.
type NoteChunkIndex struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	NoteID     string             `bson:"note_id"`
	ChunkID    string             `bson:"chunk_id"`
	Order      int                `bson:"order"`
	Text       string             `bson:"text"`
	Vector     []float32          `bson:"vector,omitempty"`
	Scope      string             `bson:"scope"`
	PersonIDs  []string           `bson:"person_ids,omitempty"`
	DeptName   string             `bson:"dept_name,omitempty"`
	ProjectID  string             `bson:"project_id,omitempty"`
	Category   string             `bson:"category,omitempty"`
	DateBucket string             `bson:"date_bucket,omitempty"`
}
