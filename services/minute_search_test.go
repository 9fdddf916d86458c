package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"worknote-platform/models"
)

func minute(topic, details string, keywords ...string) models.MeetingMinute {
	return models.MeetingMinute{
		ID:       primitive.NewObjectID(),
		Topic:    topic,
		Details:  details,
		Keywords: keywords,
	}
}

func TestScoreMinutesWeighting(t *testing.T) {
	kickoff := minute("Project kickoff", "Agreed on the rollout plan", "budget", "rollout")
	retro := minute("Sprint retro", "Discussed rollout delays and budget overrun")
	minutes := []models.MeetingMinute{kickoff, retro}

	matches := ScoreMinutes(minutes, "budget rollout", 10)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	// Keyword hits (3 each) beat detail hits (1 each).
	if matches[0].MinuteID != kickoff.ID.Hex() {
		t.Errorf("kickoff should rank first, got %q", matches[0].Topic)
	}
	if matches[0].Score != 6 {
		t.Errorf("kickoff score = %d, want 6 (two keyword hits)", matches[0].Score)
	}
	if matches[1].Score != 2 {
		t.Errorf("retro score = %d, want 2 (two detail hits)", matches[1].Score)
	}
}

func TestScoreMinutesRankedCorpus(t *testing.T) {
	planning := minute("Q3 planning", "", "roadmap", "budget")
	hiring := minute("Headcount sync", "", "roadmap", "hiring")
	opsReview := minute("Ops review", "", "ops")
	minutes := []models.MeetingMinute{planning, hiring, opsReview}

	matches := ScoreMinutes(minutes, "roadmap budget", 2)
	if len(matches) != 2 {
		t.Fatalf("expected exactly 2 matches, got %d", len(matches))
	}
	if matches[0].MinuteID != planning.ID.Hex() || matches[1].MinuteID != hiring.ID.Hex() {
		t.Errorf("wrong ranking: %q then %q", matches[0].Topic, matches[1].Topic)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not strictly ordered: %d vs %d", matches[0].Score, matches[1].Score)
	}
}

func TestScoreMinutesTopicBeatsDetail(t *testing.T) {
	inTopic := minute("Migration planning", "General discussion")
	inDetail := minute("Weekly sync", "Talked about the migration")
	minutes := []models.MeetingMinute{inDetail, inTopic}

	matches := ScoreMinutes(minutes, "migration", 10)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].MinuteID != inTopic.ID.Hex() {
		t.Errorf("topic match should outrank detail match")
	}
	if matches[0].Score != topicMatchWeight || matches[1].Score != detailMatchWeight {
		t.Errorf("scores = %d, %d; want %d, %d",
			matches[0].Score, matches[1].Score, topicMatchWeight, detailMatchWeight)
	}
}

func TestScoreMinutesExcludesZeroScores(t *testing.T) {
	minutes := []models.MeetingMinute{
		minute("Budget review", "Q3 numbers"),
		minute("Unrelated standup", "Nothing relevant"),
	}

	matches := ScoreMinutes(minutes, "budget", 10)
	if len(matches) != 1 {
		t.Fatalf("expected only scoring minutes, got %d", len(matches))
	}
	if matches[0].Topic != "Budget review" {
		t.Errorf("unexpected match %q", matches[0].Topic)
	}
}

func TestScoreMinutesPunctuationOnlyQuery(t *testing.T) {
	minutes := []models.MeetingMinute{minute("Anything", "at all")}

	if got := ScoreMinutes(minutes, "?! ... --", 10); len(got) != 0 {
		t.Errorf("punctuation-only query should match nothing, got %d", len(got))
	}
}

func TestScoreMinutesIgnoresPunctuationAndCase(t *testing.T) {
	m := minute("Deploy freeze", "Freeze starts Friday.", "deploy")
	matches := ScoreMinutes([]models.MeetingMinute{m}, "DEPLOY, friday!", 10)
	if len(matches) != 1 {
		t.Fatalf("expected a match, got %d", len(matches))
	}
	// "deploy" keyword (3) + "friday" in details (1)
	if matches[0].Score != keywordMatchWeight+detailMatchWeight {
		t.Errorf("score = %d, want %d", matches[0].Score, keywordMatchWeight+detailMatchWeight)
	}
}

func TestScoreMinutesLimit(t *testing.T) {
	var minutes []models.MeetingMinute
	for i := 0; i < 5; i++ {
		minutes = append(minutes, minute("release notes", ""))
	}

	if got := ScoreMinutes(minutes, "release", 3); len(got) != 3 {
		t.Errorf("expected limit to cap results at 3, got %d", len(got))
	}
	if got := ScoreMinutes(minutes, "release", 0); len(got) != 0 {
		t.Errorf("non-positive limit should return empty, got %d", len(got))
	}
}

func TestScoreMinutesStableTieOrder(t *testing.T) {
	first := minute("release planning", "")
	second := minute("release checklist", "")

	matches := ScoreMinutes([]models.MeetingMinute{first, second}, "release", 10)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].MinuteID != first.ID.Hex() {
		t.Error("equal scores should keep corpus order")
	}
}
