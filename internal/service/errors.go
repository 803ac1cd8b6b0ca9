package service

import "errors"

var (
	// ErrAssignmentNotFound indicates the assignment does not exist or is not visible to the caller.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAlreadySubmitted indicates the student already has a submission for the assignment.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrClassNotFound indicates the class was not located.
	ErrClassNotFound = errors.New("class not found")
	// ErrNotClassOwner indicates a teacher acted on a class they do not own.
	ErrNotClassOwner = errors.New("class belongs to another teacher")
	// ErrAlreadyJoined indicates the student is already a member of the class.
	ErrAlreadyJoined = errors.New("already joined this class")
	// ErrProfileNotFound indicates the user profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrChatSessionNotFound indicates the chat session does not exist for the user.
	ErrChatSessionNotFound = errors.New("chat session not found")
	// ErrChatEmptyMessage indicates neither text nor a file was sent.
	ErrChatEmptyMessage = errors.New("message or file is required")
	// ErrAIUnavailable indicates no AI backend is configured.
	ErrAIUnavailable = errors.New("ai backend not configured")
)
