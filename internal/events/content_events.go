package events

// Event types published by profile and post mutations
const (
	ProfileUpdated = "profile.updated"
	PostCreated    = "post.created"
	PostDeleted    = "post.deleted"
	PostLiked      = "post.liked"
	PostUnliked    = "post.unliked"
	CommentAdded   = "post.comment_added"
	CommentRemoved = "post.comment_removed"
)

// ProfileUpdatedEvent is emitted after any profile write. PreviousHandle is set
// when the write changed the handle.
type ProfileUpdatedEvent struct {
	BaseEvent
	Handle         string `json:"handle"`
	PreviousHandle string `json:"previous_handle,omitempty"`
}

// NewProfileUpdatedEvent creates a ProfileUpdatedEvent
func NewProfileUpdatedEvent(userID, handle, previousHandle string) *ProfileUpdatedEvent {
	if previousHandle == handle {
		previousHandle = ""
	}
	return &ProfileUpdatedEvent{
		BaseEvent:      newBase(ProfileUpdated, userID),
		Handle:         handle,
		PreviousHandle: previousHandle,
	}
}

// PostEvent covers post, like and comment activity
type PostEvent struct {
	BaseEvent
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id,omitempty"`
}

// NewPostEvent creates a PostEvent of the given type
func NewPostEvent(eventType, userID, postID string) *PostEvent {
	return &PostEvent{
		BaseEvent: newBase(eventType, userID),
		PostID:    postID,
	}
}

// NewCommentEvent creates a PostEvent that references a comment
func NewCommentEvent(eventType, userID, postID, commentID string) *PostEvent {
	e := NewPostEvent(eventType, userID, postID)
	e.CommentID = commentID
	return e
}
