package service

import "login-portal/internal/apperror"

// Result is the outcome shown to the user after a form submission.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// ResultFromError turns an operation error into a user-safe failure Result.
func ResultFromError(err error) Result {
	return Result{Success: false, Message: apperror.PublicMessage(err)}
}
