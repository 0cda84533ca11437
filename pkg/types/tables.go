package types

// Persisted table names.
const (
	TableUsers    = "users"
	TableFolders  = "folders"
	TableChats    = "chats"
	TableMessages = "messages"
)

// StandardTableNames lists all tables in dependency order: a table only
// references tables listed before it.
var StandardTableNames = []string{
	TableUsers,
	TableFolders,
	TableChats,
	TableMessages,
}
