package models

import "time"

type ContentKind string

const (
	ContentEvents    ContentKind = "events"
	ContentBlogs     ContentKind = "blogs"
	ContentPodcasts  ContentKind = "podcasts"
	ContentResources ContentKind = "resources"
)

var ContentKinds = []ContentKind{ContentEvents, ContentBlogs, ContentPodcasts, ContentResources}

func ParseContentKind(raw string) (ContentKind, bool) {
	for _, k := range ContentKinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}

// ContentItem is the shared record shape of events, blogs, podcasts and resources.
type ContentItem struct {
	ID              string      `json:"id"`
	Kind            ContentKind `json:"kind"`
	Title           string      `json:"title"`
	Summary         string      `json:"summary"`
	Body            string      `json:"body"`
	Category        Category    `json:"category"`
	Author          string      `json:"author"`
	MediaURL        string      `json:"mediaUrl"`
	ExternalURL     string      `json:"externalUrl"`
	StartsAt        *time.Time  `json:"startsAt,omitempty"`
	EndsAt          *time.Time  `json:"endsAt,omitempty"`
	DurationMinutes *int        `json:"durationMinutes,omitempty"`
	CreatedBy       string      `json:"createdBy"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type ContentPatch struct {
	Title           *string
	Summary         *string
	Body            *string
	Category        *Category
	Author          *string
	MediaURL        *string
	ExternalURL     *string
	StartsAt        *time.Time
	EndsAt          *time.Time
	DurationMinutes *int
}

func (c *ContentItem) Apply(p ContentPatch) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Author != nil {
		c.Author = *p.Author
	}
	if p.MediaURL != nil {
		c.MediaURL = *p.MediaURL
	}
	if p.ExternalURL != nil {
		c.ExternalURL = *p.ExternalURL
	}
	if p.StartsAt != nil {
		c.StartsAt = p.StartsAt
	}
	if p.EndsAt != nil {
		c.EndsAt = p.EndsAt
	}
	if p.DurationMinutes != nil {
		c.DurationMinutes = p.DurationMinutes
	}
}
