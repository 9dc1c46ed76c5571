package models

import (
	"time"
)

// MediaKind classifies a scraped post
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Status is the venue-level classification derived from aggregated scores
type Status string

const (
	StatusLive             Status = "LIVE"
	StatusWarmingUp        Status = "warming_up"
	StatusDead             Status = "dead"
	StatusInsufficientData Status = "insufficient_data"
)

// MediaReference represents one post found on a location page.
// Shortcode is its identity.
type MediaReference struct {
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	MediaType    MediaKind `json:"media_type"`
	Shortcode    string    `json:"shortcode"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// ScrapeResult is the terminal value of one location scrape
type ScrapeResult struct {
	LocationURL  string           `json:"location_url"`
	LocationName *string          `json:"location_name"`
	MediaItems   []MediaReference `json:"media_items"`
	ScrapedAt    time.Time        `json:"scraped_at"`
	Success      bool             `json:"success"`
	Err          string           `json:"error,omitempty"`
	Attempts     int              `json:"attempts"`
}

// VibeScore is the normalized classifier reading for a single image
type VibeScore struct {
	ImageURL    string   `json:"image_url"`
	EnergyLevel int      `json:"energy_level"`
	CrowdLevel  int      `json:"crowd_level"`
	VibeTags    []string `json:"vibe_tags"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Success     bool     `json:"success"`
	Err         *string  `json:"error"`
}

// VibeSummary aggregates the scores of one run
type VibeSummary struct {
	AvgEnergy   float64  `json:"avg_energy"`
	AvgCrowd    float64  `json:"avg_crowd"`
	TopVibeTags []string `json:"top_vibe_tags"`
	Status      Status   `json:"status"`
	SampleSize  int      `json:"sample_size"`
}

// Report is the final output of one pipeline run
type Report struct {
	RunID        string           `json:"run_id"`
	Success      bool             `json:"success"`
	LocationURL  string           `json:"location_url"`
	LocationName *string          `json:"location_name"`
	PostCount    int              `json:"post_count"`
	Posts        []MediaReference `json:"posts"`
	Analyses     []VibeScore      `json:"analyses"`
	VibeSummary  *VibeSummary     `json:"vibe_summary"`
	ScrapedAt    time.Time        `json:"scraped_at"`
	Err          string           `json:"error,omitempty"`
	Message      string           `json:"message,omitempty"`
}
