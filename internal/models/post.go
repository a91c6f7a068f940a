package models

import "time"

type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	Content      string    `json:"content"`
	Category     Category  `json:"category"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
