package sqlstore

// Schema DDL for all tables. The statements are valid for both SQLite and
// PostgreSQL. Timestamps are epoch milliseconds.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    external_id TEXT NOT NULL,
    email TEXT NOT NULL,
    display_name TEXT NOT NULL,
    avatar_url TEXT,
    created_at BIGINT NOT NULL
)`

	createFolders = `CREATE TABLE IF NOT EXISTS folders (
    folder_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users(user_id),
    name TEXT NOT NULL,
    sort_order INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`

	createChats = `CREATE TABLE IF NOT EXISTS chats (
    chat_id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users(user_id),
    title TEXT NOT NULL,
    folder_id TEXT REFERENCES folders(folder_id),
    is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`

	createMessages = `CREATE TABLE IF NOT EXISTS messages (
    message_id TEXT PRIMARY KEY,
    chat_id TEXT NOT NULL REFERENCES chats(chat_id),
    owner_id TEXT NOT NULL REFERENCES users(user_id),
    content TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
    sent_at BIGINT NOT NULL
)`
)

// Index DDL for the lookups the lifecycle manager and sidebar perform.
const (
	idxUsersExternal     = `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_external ON users(external_id)`
	idxFoldersOwner      = `CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders(owner_id, sort_order)`
	idxChatsOwnerUpdated = `CREATE INDEX IF NOT EXISTS idx_chats_owner_updated ON chats(owner_id, updated_at)`
	idxChatsOwnerFolder  = `CREATE INDEX IF NOT EXISTS idx_chats_owner_folder ON chats(owner_id, folder_id)`
	idxChatsOwnerPinned  = `CREATE INDEX IF NOT EXISTS idx_chats_owner_pinned ON chats(owner_id, is_pinned)`
	idxMessagesChat      = `CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, sent_at)`
	idxMessagesChatRole  = `CREATE INDEX IF NOT EXISTS idx_messages_chat_role ON messages(chat_id, role)`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createUsers,
	createFolders,
	createChats,
	createMessages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxUsersExternal,
	idxFoldersOwner,
	idxChatsOwnerUpdated,
	idxChatsOwnerFolder,
	idxChatsOwnerPinned,
	idxMessagesChat,
	idxMessagesChatRole,
}
