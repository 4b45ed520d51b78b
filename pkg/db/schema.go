package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Authors are deduplicated by username; nicknames are display-only
CREATE TABLE IF NOT EXISTS authors (
    author_id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS boards (
    board_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT
);

-- Topics hold the root post
CREATE TABLE IF NOT EXISTS topics (
    topic_id INTEGER PRIMARY KEY AUTOINCREMENT,
    reid INTEGER NOT NULL UNIQUE,
    title TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    content TEXT NOT NULL,
    text TEXT,
    format TEXT,
    language TEXT,
    author_id INTEGER NOT NULL,
    board_id INTEGER NOT NULL,
    imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (author_id) REFERENCES authors(author_id),
    FOREIGN KEY (board_id) REFERENCES boards(board_id)
);

CREATE INDEX IF NOT EXISTS idx_topics_board ON topics(board_id);
CREATE INDEX IF NOT EXISTS idx_topics_author ON topics(author_id);

-- Replies in source order. reply_to_id links to an earlier reply;
-- reply_to_root marks replies that answer the topic root.
CREATE TABLE IF NOT EXISTS posts (
    post_id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    author_id INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    content TEXT NOT NULL,
    text TEXT,
    reply_to_id INTEGER,
    reply_to_root BOOLEAN DEFAULT 0,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE,
    FOREIGN KEY (author_id) REFERENCES authors(author_id),
    FOREIGN KEY (reply_to_id) REFERENCES posts(post_id),
    UNIQUE(topic_id, position)
);

CREATE INDEX IF NOT EXISTS idx_posts_topic ON posts(topic_id);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);
CREATE INDEX IF NOT EXISTS idx_posts_reply ON posts(reply_to_id);

-- Image URLs; position is NULL for topic-level assets
CREATE TABLE IF NOT EXISTS assets (
    asset_id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id INTEGER NOT NULL,
    position INTEGER,
    url TEXT NOT NULL,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_assets_topic ON assets(topic_id);

-- Runs: one row per reimport
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    board TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    documents INTEGER DEFAULT 0,
    parsed INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0,
    saved INTEGER DEFAULT 0,
    dry_run BOOLEAN DEFAULT 0
);
`
