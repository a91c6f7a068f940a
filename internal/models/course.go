package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategorySTEM         Category = "STEM"
	CategoryHealthcare   Category = "Healthcare"
	CategoryPublicHealth Category = "Public Health"
)

var Categories = []Category{CategorySTEM, CategoryHealthcare, CategoryPublicHealth}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches case-insensitively and returns the canonical value.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range Categories {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

type Lecture struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	VideoURL        string `json:"videoUrl"`
	DurationMinutes int    `json:"durationMinutes"`
}

type Section struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Lectures []Lecture `json:"lectures"`
}

// Course is a catalog entry. A nil PriceCents marks the free resource variant.
type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     Category  `json:"category"`
	PriceCents   *int64    `json:"priceCents,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Instructor   string    `json:"instructor"`
	Sections     []Section `json:"sections"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c Course) IsPaid() bool {
	return c.PriceCents != nil && *c.PriceCents > 0
}

func (c Course) TotalLectures() int {
	total := 0
	for _, s := range c.Sections {
		total += len(s.Lectures)
	}
	return total
}

// CountCompleted counts the ids in completed that are lectures of the course
// as it stands now. Ids of lectures since removed are ignored.
func (c Course) CountCompleted(completed []string) int {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	count := 0
	for _, s := range c.Sections {
		for _, l := range s.Lectures {
			if done[l.ID] {
				count++
				delete(done, l.ID)
			}
		}
	}
	return count
}

func (c Course) HasLecture(lectureID string) bool {
	for _, s := range c.Sections {
		for _, l := range s.Lectures {
			if l.ID == lectureID {
				return true
			}
		}
	}
	return false
}

type CoursePatch struct {
	Title        *string
	Description  *string
	Category     *Category
	PriceCents   *int64
	ClearPrice   bool
	ThumbnailURL *string
	Instructor   *string
	Sections     []Section
}

func (c *Course) Apply(p CoursePatch) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.ClearPrice {
		c.PriceCents = nil
	} else if p.PriceCents != nil {
		price := *p.PriceCents
		c.PriceCents = &price
	}
	if p.ThumbnailURL != nil {
		c.ThumbnailURL = *p.ThumbnailURL
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Sections != nil {
		c.Sections = p.Sections
	}
}
