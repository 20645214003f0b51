package protocol

// Canonical submit messages for backends that verify flags locally. Callers
// branch on status; the messages are for humans and fixed for consistency
// across providers.
const (
	MsgCorrect          = "correct!"
	MsgWrongFlag        = "wrong flag"
	MsgUnknownChallenge = "unknown challenge"
)

func Accepted() *SubmitResult {
	return &SubmitResult{Status: StatusAccepted, Message: MsgCorrect}
}

func Rejected() *SubmitResult {
	return &SubmitResult{Status: StatusRejected, Message: MsgWrongFlag}
}

func UnknownChallenge() *SubmitResult {
	return &SubmitResult{Status: StatusError, Message: MsgUnknownChallenge}
}
