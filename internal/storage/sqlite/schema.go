// ABOUTME: SQLite schema for the per-project memory database
// ABOUTME: Creates memories, tasks, retrievals, and meta tables with indexes
package sqlite

// Schema contains all SQL statements for database initialization. Every
// statement is idempotent, so it runs on every open.
const Schema = `
-- Memories table (the atomic unit of recall)
-- A NULL embedding means the vector is pending; such rows are invisible
-- to retrieval until embed-pending fills them in.
CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    embedding BLOB,
    category TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    initial_cost INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    last_retrieved INTEGER,
    retrieval_count INTEGER NOT NULL DEFAULT 0,
    source_task TEXT
);

-- Tasks table (one bounded piece of agent work)
-- finished_at IS NULL means the task is still active.
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL,
    embedding BLOB,
    tokens_used INTEGER NOT NULL DEFAULT 0,
    tool_calls INTEGER NOT NULL DEFAULT 0,
    errors INTEGER NOT NULL DEFAULT 0,
    user_corrections INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    task_score REAL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER
);

-- Retrieval log: one row per (memory, task) pair. self_report and credit
-- stay NULL until the task ends with a rating for the pair.
CREATE TABLE IF NOT EXISTS memory_retrievals (
    memory_id TEXT NOT NULL,
    task_id TEXT NOT NULL,
    similarity REAL NOT NULL,
    self_report INTEGER,
    credit REAL,
    PRIMARY KEY (memory_id, task_id)
);

-- Key/value strings; holds the serialized running baseline.
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_memories_weight ON memories(weight);
CREATE INDEX IF NOT EXISTS idx_tasks_finished ON tasks(finished_at);
CREATE INDEX IF NOT EXISTS idx_retrievals_task ON memory_retrievals(task_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
