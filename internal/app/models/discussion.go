package models

import "time"

// Discussion defines a community discussion thread based on the
// 'discussions' table
type Discussion struct {
	ID          int64     `json:"id" db:"id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	GameTypeID  *int64    `json:"gameTypeId,omitempty" db:"game_type_id"`
	AuthorID    int64     `json:"authorId" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	Author       *User      `json:"author,omitempty"`    // relation, no db tag
	Community    *Community `json:"community,omitempty"` // relation, no db tag
	CommentCount int64      `json:"commentCount,omitempty" db:"-"`
	LikeCount    int64      `json:"likeCount,omitempty" db:"-"`
	LikedByMe    bool       `json:"likedByMe,omitempty" db:"-"`
}

// Comment defines a reply on a discussion based on the 'comments' table
type Comment struct {
	ID           int64     `json:"id" db:"id"`
	DiscussionID int64     `json:"discussionId" db:"discussion_id"`
	AuthorID     int64     `json:"authorId" db:"author_id"`
	Body         string    `json:"body" db:"body"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	Author *User `json:"author,omitempty"` // relation, no db tag
}

// Like defines a like on a discussion based on the 'likes' table.
// Unique on (discussion_id, user_id).
type Like struct {
	ID           int64     `json:"id" db:"id"`
	DiscussionID int64     `json:"discussionId" db:"discussion_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
