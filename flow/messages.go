package flow

import "fmt"

// Messages shown next to the control that triggered them.
const (
	MsgEmailRequired      = "Please enter your email address."
	MsgEmailInvalid       = "Please enter a valid email address."
	MsgEmailNotRegistered = "This email is not registered. Please register first."
	MsgNameRequired       = "Please enter the team leader's name."
	MsgMobileRequired     = "Please enter a mobile number."
	MsgTeamNameRequired   = "Please enter a team name."
	MsgTeamSizeInvalid    = "Team size must be between 2 and 5."
	MsgTopicRequired      = "Please choose a topic."
	MsgIdeaRequired       = "Please describe your idea."
	MsgVerifyEmailFirst   = "Please verify your email before submitting."

	MsgSendFailed     = "Failed to send OTP. Please try again."
	MsgServerError    = "Server error. Please try again later."
	MsgIncorrectCode  = "Incorrect OTP. Please try again."
	MsgCodeExpired    = "OTP expired or not found. Please request a new one."
	MsgUnexpected     = "Unexpected response from server. Please try again."
	MsgSomethingWrong = "Something went wrong. Please try again."
	MsgRegisterFailed = "Registration failed. Please try again."
)

func msgIncompleteCode(length int) string {
	return fmt.Sprintf("Please enter the complete %d-digit code.", length)
}

func msgMemberIncomplete(i int) string {
	return fmt.Sprintf("Please fill in name, a valid email and mobile for member %d.", i+2)
}
