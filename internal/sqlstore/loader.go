package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// tableFile binds a table to its JSONL file, its export query, and the
// named insert used on import. admit, when set, rejects decoded rows that
// the schema alone would accept but the lifecycle rules forbid.
type tableFile struct {
	table  string
	file   string
	dump   func(ctx context.Context, q sqlx.QueryerContext) ([]any, error)
	decode func(data []byte) (any, error)
	admit  func(ctx context.Context, q sqlx.ExtContext, row any) (bool, error)
	insert string
}

// tableFiles lists the tables in dependency order: a table only references
// tables listed before it.
var tableFiles = []tableFile{
	{
		table:  types.TableUsers,
		file:   "users.jsonl",
		dump:   dumpRows[userRow]("SELECT " + userColumns + " FROM users ORDER BY user_id"),
		decode: decodeRow[userRow],
		insert: "INSERT INTO users (" + userColumns + ") VALUES " +
			"(:user_id, :external_id, :email, :display_name, :avatar_url, :created_at) ON CONFLICT DO NOTHING",
	},
	{
		table:  types.TableFolders,
		file:   "folders.jsonl",
		dump:   dumpRows[folderRow]("SELECT " + folderColumns + " FROM folders ORDER BY folder_id"),
		decode: decodeRow[folderRow],
		insert: "INSERT INTO folders (" + folderColumns + ") VALUES " +
			"(:folder_id, :owner_id, :name, :sort_order, :created_at, :updated_at) ON CONFLICT DO NOTHING",
	},
	{
		table:  types.TableChats,
		file:   "chats.jsonl",
		dump:   dumpRows[chatRow]("SELECT " + chatColumns + " FROM chats ORDER BY chat_id"),
		decode: decodeRow[chatRow],
		admit:  admitChat,
		insert: "INSERT INTO chats (" + chatColumns + ") VALUES " +
			"(:chat_id, :owner_id, :title, :folder_id, :is_pinned, :created_at, :updated_at) ON CONFLICT DO NOTHING",
	},
	{
		table:  types.TableMessages,
		file:   "messages.jsonl",
		dump:   dumpRows[messageRow]("SELECT " + messageColumns + " FROM messages ORDER BY message_id"),
		decode: decodeRow[messageRow],
		admit:  admitMessage,
		insert: "INSERT INTO messages (" + messageColumns + ") VALUES " +
			"(:message_id, :chat_id, :owner_id, :content, :role, :sent_at) ON CONFLICT DO NOTHING",
	},
}

func dumpRows[T any](query string) func(context.Context, sqlx.QueryerContext) ([]any, error) {
	return func(ctx context.Context, q sqlx.QueryerContext) ([]any, error) {
		var rows []T
		if err := sqlx.SelectContext(ctx, q, &rows, query); err != nil {
			return nil, err
		}
		out := make([]any, len(rows))
		for i := range rows {
			out[i] = rows[i]
		}
		return out, nil
	}
}

// rowOwner returns the owner of the row that query selects by id. The bool
// is false when no such row exists.
func rowOwner(ctx context.Context, q sqlx.ExtContext, query, id string) (string, bool, error) {
	var owner string
	err := sqlx.GetContext(ctx, q, &owner, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

// admitChat rejects a chat filed under a folder of another owner. A missing
// folder is left to the foreign key.
func admitChat(ctx context.Context, q sqlx.ExtContext, row any) (bool, error) {
	c := row.(chatRow)
	if c.FolderID == nil {
		return true, nil
	}
	owner, ok, err := rowOwner(ctx, q, "SELECT owner_id FROM folders WHERE folder_id = ?", *c.FolderID)
	if err != nil || !ok {
		return true, err
	}
	return owner == c.OwnerID, nil
}

// admitMessage rejects a message with an unknown role or one whose owner is
// not the owner of its chat.
func admitMessage(ctx context.Context, q sqlx.ExtContext, row any) (bool, error) {
	m := row.(messageRow)
	if !types.ValidRole(m.Role) {
		return false, nil
	}
	owner, ok, err := rowOwner(ctx, q, "SELECT owner_id FROM chats WHERE chat_id = ?", m.ChatID)
	if err != nil || !ok {
		return true, err
	}
	return owner == m.OwnerID, nil
}

// decodeRow parses one JSONL record. Unknown fields are ignored.
func decodeRow[T any](data []byte) (any, error) {
	var row T
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// ImportCounts reports, per table, how many records were inserted and how
// many were skipped.
type ImportCounts struct {
	Loaded  map[string]int `json:"loaded"`
	Skipped map[string]int `json:"skipped"`
}

// Import loads the <table>.jsonl files in dir in one transaction, in
// dependency order. Missing files are treated as empty. Malformed records,
// records that duplicate an existing id, and records that violate a
// constraint are skipped; unknown fields are ignored. A chat filed under
// another owner's folder and a message whose role is unknown or whose owner
// differs from its chat's owner are skipped too.
func (b *Backend) Import(ctx context.Context, dir string) (ImportCounts, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := ImportCounts{Loaded: map[string]int{}, Skipped: map[string]int{}}
	if !b.attached {
		return counts, types.ErrStoreDetached
	}

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tf := range tableFiles {
		counts.Loaded[tf.table], counts.Skipped[tf.table] = 0, 0
		records, err := readJSONL(filepath.Join(dir, tf.file))
		if err != nil {
			return counts, fmt.Errorf("reading %s: %w", tf.file, err)
		}
		for _, rec := range records {
			ok, err := insertRecord(ctx, tx, tf, rec)
			if err != nil {
				return counts, fmt.Errorf("loading %s: %w", tf.file, err)
			}
			if ok {
				counts.Loaded[tf.table]++
			} else {
				counts.Skipped[tf.table]++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("committing import transaction: %w", err)
	}
	return counts, nil
}

// insertRecord inserts one record under a savepoint so that a constraint
// violation discards only that record. It reports whether a row was
// inserted; the error is non-nil only when an admission lookup or the
// savepoint itself fails.
func insertRecord(ctx context.Context, tx *sqlx.Tx, tf tableFile, data []byte) (bool, error) {
	row, err := tf.decode(data)
	if err != nil {
		return false, nil
	}
	if tf.admit != nil {
		ok, err := tf.admit(ctx, tx, row)
		if err != nil || !ok {
			return false, err
		}
	}

	if _, err := tx.ExecContext(ctx, "SAVEPOINT import_record"); err != nil {
		return false, err
	}
	res, err := tx.NamedExecContext(ctx, tf.insert, row)
	if err != nil {
		if _, rerr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT import_record"); rerr != nil {
			return false, rerr
		}
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT import_record"); err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
