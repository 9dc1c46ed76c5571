// Package aggregate reduces per-image vibe scores to a venue summary.
package aggregate

import (
	"math"
	"sort"

	"github.com/williampepple1/vibe-scout/pkg/models"
)

const (
	// MinConfidence is the exclusive lower bound for a score to count
	MinConfidence = 0.3
	// TopTags is the number of tags kept in a summary
	TopTags = 4
)

// Summarize aggregates scores into a VibeSummary. Only successful scores
// with confidence above MinConfidence contribute.
func Summarize(scores []models.VibeScore) models.VibeSummary {
	var contributing []models.VibeScore
	for _, s := range scores {
		if s.Success && s.Confidence > MinConfidence {
			contributing = append(contributing, s)
		}
	}

	if len(contributing) == 0 {
		return models.VibeSummary{
			AvgEnergy:   5,
			AvgCrowd:    5,
			TopVibeTags: []string{"Unknown"},
			Status:      models.StatusInsufficientData,
			SampleSize:  0,
		}
	}

	var energy, crowd float64
	for _, s := range contributing {
		energy += float64(s.EnergyLevel)
		crowd += float64(s.CrowdLevel)
	}
	n := float64(len(contributing))
	avgEnergy := energy / n
	avgCrowd := crowd / n

	tags := topTags(contributing, TopTags)
	if len(tags) == 0 {
		tags = []string{"Unknown"}
	}

	return models.VibeSummary{
		AvgEnergy:   round1(avgEnergy),
		AvgCrowd:    round1(avgCrowd),
		TopVibeTags: tags,
		Status:      Classify(avgEnergy, avgCrowd),
		SampleSize:  len(contributing),
	}
}

// Classify maps mean energy and crowd levels to a venue status
func Classify(avgEnergy, avgCrowd float64) models.Status {
	switch {
	case avgEnergy >= 7 && avgCrowd >= 7:
		return models.StatusLive
	case avgEnergy >= 5 || avgCrowd >= 5:
		return models.StatusWarmingUp
	default:
		return models.StatusDead
	}
}

// topTags returns the limit most frequent tags, ties kept in first-seen order
func topTags(scores []models.VibeScore, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range scores {
		for _, tag := range s.VibeTags {
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
