package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"worknote-platform/models"
)

// Lexical scoring weights. An exact keyword hit outweighs a topic-token hit,
// which outweighs an incidental body-text hit. Relative ordering is the
// contract; the absolute numbers are not surfaced to callers as meaningful.
const (
	keywordMatchWeight = 3
	topicMatchWeight   = 2
	detailMatchWeight  = 1
)

// MinuteMatch is one scored meeting-minute result.
type MinuteMatch struct {
	MinuteID string   `json:"meeting_id"`
	Topic    string   `json:"topic"`
	Score    int      `json:"score"`
	Keywords []string `json:"keywords"`
}

// MinuteSearch ranks the meeting-minute corpus against a query with
// token-overlap scoring. The corpus is small and changes rarely, so a full
// scan per query beats maintaining embeddings for it.
type MinuteSearch struct {
	minutes *mongo.Collection
}

func NewMinuteSearch(db *mongo.Database) *MinuteSearch {
	return &MinuteSearch{minutes: db.Collection("meeting_minutes")}
}

// Search scores every minute against the query and returns the top matches.
// A query with no meaningful tokens, a non-positive limit, or a corpus with
// no overlap all yield an empty list, never an error.
func (s *MinuteSearch) Search(ctx context.Context, query string, limit int) ([]MinuteMatch, error) {
	if limit <= 0 {
		return []MinuteMatch{}, nil
	}
	if len(tokenize(query)) == 0 {
		return []MinuteMatch{}, nil
	}

	cursor, err := s.minutes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meeting minutes: %w", err)
	}
	defer cursor.Close(ctx)

	var minutes []models.MeetingMinute
	if err := cursor.All(ctx, &minutes); err != nil {
		return nil, fmt.Errorf("failed to decode meeting minutes: %w", err)
	}

	return ScoreMinutes(minutes, query, limit), nil
}

// ScoreMinutes ranks minutes by weighted token overlap with the query.
// Zero-score entries are excluded entirely; equal scores keep corpus order.
func ScoreMinutes(minutes []models.MeetingMinute, query string, limit int) []MinuteMatch {
	if limit <= 0 {
		return []MinuteMatch{}
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []MinuteMatch{}
	}

	matches := make([]MinuteMatch, 0, len(minutes))
	for _, minute := range minutes {
		keywords := make(map[string]bool, len(minute.Keywords))
		for _, kw := range minute.Keywords {
			keywords[strings.ToLower(kw)] = true
		}
		topicTokens := tokenSet(minute.Topic)
		detailTokens := tokenSet(minute.Details)

		score := 0
		for token := range queryTokens {
			switch {
			case keywords[token]:
				score += keywordMatchWeight
			case topicTokens[token]:
				score += topicMatchWeight
			case detailTokens[token]:
				score += detailMatchWeight
			}
		}
		if score == 0 {
			continue
		}
		matches = append(matches, MinuteMatch{
			MinuteID: minute.ID.Hex(),
			Topic:    minute.Topic,
			Score:    score,
			Keywords: minute.Keywords,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// tokenize lowercases and keeps only tokens containing at least one letter
// or digit; punctuation-only tokens are dropped.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !isWordRune(r)
		})
		if token == "" {
			continue
		}
		tokens[token] = true
	}
	return tokens
}

func tokenSet(text string) map[string]bool {
	return tokenize(text)
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r >= 0x80
}
