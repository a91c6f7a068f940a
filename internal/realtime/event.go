package realtime

import (
	"fmt"
	"time"
)

// Event announces that data behind Topic changed. Subscribers re-run their
// query, so events carry no payload beyond a hint.
type Event struct {
	Topic string    `json:"topic"`
	Kind  string    `json:"kind"`
	At    time.Time `json:"at"`
}

const (
	TopicCourses = "courses"
	TopicPosts   = "posts"
)

func TopicConnections(userID string) string {
	return fmt.Sprintf("user:%s:connections", userID)
}

func TopicNotifications(userID string) string {
	return fmt.Sprintf("user:%s:notifications", userID)
}

func TopicProgress(userID string) string {
	return fmt.Sprintf("user:%s:progress", userID)
}

func TopicChat(chatID string) string {
	return "chat:" + chatID
}

func TopicContent(kind string) string {
	return "content:" + kind
}

func TopicPostComments(postID string) string {
	return "post:" + postID + ":comments"
}
