package service

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrNotPostOwner = errors.New("only the post owner can do this")
	ErrNotAllowed   = errors.New("not allowed")
	ErrSelfFollow   = errors.New("you cannot follow yourself")

	ErrUsernameTaken    = errors.New("username is already taken")
	ErrInvalidUsername  = errors.New("username must be 3-30 characters: letters, digits, underscores")
	ErrBioTooLong       = errors.New("bio must be at most 150 characters")
	ErrImageRequired    = errors.New("an image is required")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrCaptionTooLong   = errors.New("caption must be at most 2000 characters")
	ErrInvalidComment   = errors.New("comment text must be 1-500 characters")
	ErrQueryTooShort    = errors.New("search query must be at least 2 characters")
)
