package models

import (
	"math"
	"time"
)

type UserCourseProgress struct {
	UserID            string     `json:"userId"`
	CourseID          string     `json:"courseId"`
	Progress          int        `json:"progress"`
	CompletedLectures []string   `json:"completedLectures"`
	LastLectureID     string     `json:"lastLectureId"`
	EnrolledAt        time.Time  `json:"enrolledAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func NewEnrollment(userID, courseID string) UserCourseProgress {
	return UserCourseProgress{
		UserID:            userID,
		CourseID:          courseID,
		CompletedLectures: []string{},
	}
}

// ComputeProgress is round(100 * completed / total), 0 for an empty course.
func ComputeProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}

func (p UserCourseProgress) HasCompleted(lectureID string) bool {
	for _, id := range p.CompletedLectures {
		if id == lectureID {
			return true
		}
	}
	return false
}

// MarkLecture adds lectureID to the completed set and recomputes progress
// against the course's current lectures. It reports whether the record
// crossed into completion. A record that falls below 100 after the course
// gained lectures loses its completion time.
func (p *UserCourseProgress) MarkLecture(lectureID string, course Course) bool {
	if !p.HasCompleted(lectureID) {
		p.CompletedLectures = append(p.CompletedLectures, lectureID)
	}
	p.LastLectureID = lectureID
	p.Progress = ComputeProgress(course.CountCompleted(p.CompletedLectures), course.TotalLectures())
	if p.Progress < 100 {
		p.CompletedAt = nil
		return false
	}
	return p.CompletedAt == nil
}

func (p UserCourseProgress) IsComplete() bool {
	return p.Progress == 100
}

type Achievement struct {
	UserID    string    `json:"userId"`
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	AwardedAt time.Time `json:"awardedAt"`
}

func AchievementID(courseID string) string {
	return "cert-" + courseID
}

func CourseAchievement(userID string, course Course) Achievement {
	return Achievement{
		UserID:   userID,
		ID:       AchievementID(course.ID),
		CourseID: course.ID,
		Title:    course.Title,
	}
}

// CourseCompletion is persisted in the same write that takes progress to 100.
type CourseCompletion struct {
	Achievement  Achievement
	Notification Notification
}
