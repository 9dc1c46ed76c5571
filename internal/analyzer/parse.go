package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/williampepple1/vibe-scout/pkg/models"
)

// ErrParse marks a classifier reply that does not match the expected schema
var ErrParse = errors.New("parse error")

const (
	minLevel = 1
	maxLevel = 10
	maxTags  = 4
)

// reply is the strict shape of a classifier answer. Pointers distinguish a
// missing key from a zero value.
type reply struct {
	EnergyLevel *float64  `json:"energy_level"`
	CrowdLevel  *float64  `json:"crowd_level"`
	VibeTags    *[]string `json:"vibe_tags"`
	Description *string   `json:"description"`
	Confidence  *float64  `json:"confidence"`
}

// StripCodeFence removes a surrounding markdown code fence and its language tag
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = text[3:]
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	text = strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	return strings.TrimSpace(text)
}

// decode strictly decodes text into a reply
func decode(text string) (reply, error) {
	var r reply
	dec := json.NewDecoder(bytes.NewReader([]byte(StripCodeFence(text))))
	if err := dec.Decode(&r); err != nil {
		return reply{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return reply{}, fmt.Errorf("%w: trailing data after JSON object", ErrParse)
	}

	var missing []string
	if r.EnergyLevel == nil {
		missing = append(missing, "energy_level")
	}
	if r.CrowdLevel == nil {
		missing = append(missing, "crowd_level")
	}
	if r.VibeTags == nil {
		missing = append(missing, "vibe_tags")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	if r.Confidence == nil {
		missing = append(missing, "confidence")
	}
	if len(missing) > 0 {
		return reply{}, fmt.Errorf("%w: missing fields %s", ErrParse, strings.Join(missing, ", "))
	}
	return r, nil
}

// ParseReply converts a classifier reply into a VibeScore. It never fails:
// anything that does not decode yields the degraded parse-failure score.
func ParseReply(imageURL, text string) models.VibeScore {
	r, err := decode(text)
	if err != nil {
		return Degraded(imageURL, "Failed to parse analysis", err.Error())
	}

	tags := make([]string, 0, maxTags)
	for _, tag := range *r.VibeTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}

	return models.VibeScore{
		ImageURL:    imageURL,
		EnergyLevel: clampLevel(*r.EnergyLevel),
		CrowdLevel:  clampLevel(*r.CrowdLevel),
		VibeTags:    tags,
		Description: *r.Description,
		Confidence:  clampUnit(*r.Confidence),
		Success:     true,
	}
}

// Degraded returns the low-confidence score used for every failure path
func Degraded(imageURL, description, errMsg string) models.VibeScore {
	return models.VibeScore{
		ImageURL:    imageURL,
		EnergyLevel: 5,
		CrowdLevel:  5,
		VibeTags:    []string{"Unknown"},
		Description: description,
		Confidence:  0.0,
		Success:     false,
		Err:         &errMsg,
	}
}

func clampLevel(v float64) int {
	n := math.Trunc(v)
	if n < minLevel {
		return minLevel
	}
	if n > maxLevel {
		return maxLevel
	}
	return int(n)
}

func clampUnit(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// Normalize re-applies every range invariant to s
func Normalize(s models.VibeScore) models.VibeScore {
	s.EnergyLevel = clampLevel(float64(s.EnergyLevel))
	s.CrowdLevel = clampLevel(float64(s.CrowdLevel))
	if math.IsNaN(s.Confidence) {
		s.Confidence = 0
	}
	s.Confidence = clampUnit(s.Confidence)
	if len(s.VibeTags) > maxTags {
		s.VibeTags = s.VibeTags[:maxTags]
	}
	return s
}
