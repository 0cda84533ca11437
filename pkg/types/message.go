package types

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// validRoles is the set of recognized message roles.
var validRoles = map[string]bool{
	RoleUser:      true,
	RoleAssistant: true,
}

// ValidRole reports whether role is a recognized message role.
func ValidRole(role string) bool {
	return validRoles[role]
}

// Message is one turn of a chat. Messages are immutable once written and are
// deleted only together with their chat.
type Message struct {
	MessageID string `json:"id"`
	ChatID    string `json:"chatId"`
	OwnerID   string `json:"ownerId"`
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}
