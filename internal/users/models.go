package users

import "time"

type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
}

// FollowRequest is the body of both follow and unfollow.
type FollowRequest struct {
	FollowerID string `json:"followerId" validate:"required,uuid"`
	FollowedID string `json:"followedId" validate:"required,uuid"`
}
