package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

func score(energy, crowd int, confidence float64, tags ...string) models.VibeScore {
	return models.VibeScore{
		EnergyLevel: energy,
		CrowdLevel:  crowd,
		VibeTags:    tags,
		Confidence:  confidence,
		Success:     true,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, models.StatusInsufficientData, s.Status)
	assert.Equal(t, 0, s.SampleSize)
	assert.Equal(t, 5.0, s.AvgEnergy)
	assert.Equal(t, 5.0, s.AvgCrowd)
	assert.Equal(t, []string{"Unknown"}, s.TopVibeTags)
}

func TestSummarize_AllFilteredOut(t *testing.T) {
	failed := score(9, 9, 0.9, "Techno")
	failed.Success = false

	s := Summarize([]models.VibeScore{
		failed,
		score(9, 9, 0.3, "Techno"),
		score(9, 9, 0.1),
	})
	assert.Equal(t, models.StatusInsufficientData, s.Status)
	assert.Equal(t, 0, s.SampleSize)
}

func TestSummarize_Live(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(8, 8, 0.9, "Techno"),
		score(8, 7, 0.8, "Techno"),
	})
	assert.Equal(t, 8.0, s.AvgEnergy)
	assert.Equal(t, 7.5, s.AvgCrowd)
	assert.Equal(t, models.StatusLive, s.Status)
	assert.Equal(t, 2, s.SampleSize)
}

func TestSummarize_WarmingUp(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(6, 3, 0.9),
		score(6, 3, 0.9),
	})
	assert.Equal(t, 6.0, s.AvgEnergy)
	assert.Equal(t, 3.0, s.AvgCrowd)
	assert.Equal(t, models.StatusWarmingUp, s.Status)
	assert.Equal(t, []string{"Unknown"}, s.TopVibeTags)
}

func TestSummarize_Dead(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(3, 2, 0.9, "Chill"),
		score(3, 2, 0.5, "Chill"),
	})
	assert.Equal(t, models.StatusDead, s.Status)
}

func TestSummarize_TagsTieBrokenByFirstSeen(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(5, 5, 0.9, "Techno", "Dark"),
		score(5, 5, 0.9, "Techno", "Hype"),
		score(5, 5, 0.9, "Dark"),
	})
	assert.Equal(t, []string{"Techno", "Dark", "Hype"}, s.TopVibeTags)
}

func TestSummarize_TopFourOnly(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(5, 5, 0.9, "A", "B", "C", "D"),
		score(5, 5, 0.9, "E", "D"),
		score(5, 5, 0.9, "E"),
	})
	assert.Equal(t, []string{"D", "E", "A", "B"}, s.TopVibeTags)
}

func TestSummarize_RoundsToOneDecimal(t *testing.T) {
	s := Summarize([]models.VibeScore{
		score(7, 1, 0.9),
		score(7, 2, 0.9),
		score(8, 2, 0.9),
	})
	assert.Equal(t, 7.3, s.AvgEnergy)
	assert.Equal(t, 1.7, s.AvgCrowd)
	assert.Equal(t, 3, s.SampleSize)
}

func TestClassify_Boundaries(t *testing.T) {
	assert.Equal(t, models.StatusLive, Classify(7, 7))
	assert.Equal(t, models.StatusWarmingUp, Classify(7, 6.9))
	assert.Equal(t, models.StatusWarmingUp, Classify(4.9, 5))
	assert.Equal(t, models.StatusDead, Classify(4.9, 4.9))
}
