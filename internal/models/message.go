package models

// Role identifies who authored a message in the transcript.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// TimeLayout is the minute-resolution clock format stored with each message.
const TimeLayout = "15:04"

// Message is one entry of a session transcript. It is a value type and is never
// mutated after being appended.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Time string `json:"time"`
}
