package store

// schema creates every table the service owns. It is idempotent.
const schema = `
-- Users known to the tracker (notification recipients)
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Boards group tasks and belong to a project
CREATE TABLE IF NOT EXISTS boards (
    id         TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_boards_project_id ON boards(project_id);

-- Tasks read model
CREATE TABLE IF NOT EXISTS tasks (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'todo'
               CHECK (status IN ('todo', 'in_progress', 'under_review', 'done', 'archived')),
    start_date TEXT,
    due_date   TEXT,
    created_by TEXT NOT NULL,
    board_id   TEXT REFERENCES boards(id) ON DELETE SET NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_board_id ON tasks(board_id);

CREATE TABLE IF NOT EXISTS task_assignees (
    task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    PRIMARY KEY (task_id, user_id)
);

-- Dependency edges. Rows are never deleted; is_active = 0 is a soft delete.
CREATE TABLE IF NOT EXISTS task_dependencies (
    id                  TEXT PRIMARY KEY,
    predecessor_task_id TEXT NOT NULL REFERENCES tasks(id),
    successor_task_id   TEXT NOT NULL REFERENCES tasks(id),
    dependency_type     TEXT NOT NULL DEFAULT 'FS'
                        CHECK (dependency_type IN ('FS', 'SS', 'FF', 'SF')),
    lag_time            INTEGER NOT NULL DEFAULT 0 CHECK (lag_time >= 0),
    is_active           INTEGER NOT NULL DEFAULT 1,
    created_by          TEXT NOT NULL,
    updated_by          TEXT NOT NULL,
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL,
    CHECK (predecessor_task_id != successor_task_id),
    UNIQUE (predecessor_task_id, successor_task_id, dependency_type)
);

CREATE INDEX IF NOT EXISTS idx_task_dependencies_predecessor ON task_dependencies(predecessor_task_id, is_active);
CREATE INDEX IF NOT EXISTS idx_task_dependencies_successor ON task_dependencies(successor_task_id, is_active);

-- Dependency notifications. JSON columns hold recipients, channels, content and metadata.
CREATE TABLE IF NOT EXISTS dependency_notifications (
    id                TEXT PRIMARY KEY,
    dependency_id     TEXT NOT NULL REFERENCES task_dependencies(id),
    notification_type TEXT NOT NULL,
    recipients        TEXT NOT NULL DEFAULT '[]',
    channels          TEXT NOT NULL DEFAULT '[]',
    priority          TEXT NOT NULL DEFAULT 'normal'
                      CHECK (priority IN ('low', 'normal', 'high', 'critical')),
    content           TEXT NOT NULL DEFAULT '{}',
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending', 'sent', 'delivered', 'failed')),
    metadata          TEXT NOT NULL DEFAULT '{}',
    sent_at           TEXT,
    created_at        TEXT NOT NULL,
    updated_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dependency_notifications_dependency ON dependency_notifications(dependency_id);
CREATE INDEX IF NOT EXISTS idx_dependency_notifications_status ON dependency_notifications(status, created_at);

-- Per recipient, per channel delivery log. Append-only except opened_at.
CREATE TABLE IF NOT EXISTS dependency_notification_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    notification_id TEXT NOT NULL REFERENCES dependency_notifications(id),
    user_id         TEXT NOT NULL,
    channel         TEXT NOT NULL CHECK (channel IN ('email', 'inApp', 'push')),
    status          TEXT NOT NULL CHECK (status IN ('delivered', 'failed', 'opened')),
    error           TEXT,
    opened_at       TEXT,
    created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dependency_notification_logs_notification ON dependency_notification_logs(notification_id);
CREATE INDEX IF NOT EXISTS idx_dependency_notification_logs_user ON dependency_notification_logs(user_id, channel, created_at);

-- Preferences; project_id '' is the user's global row.
CREATE TABLE IF NOT EXISTS dependency_notification_preferences (
    user_id    TEXT NOT NULL,
    project_id TEXT NOT NULL DEFAULT '',
    settings   TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_id, project_id)
);

-- General in-app notification feed
CREATE TABLE IF NOT EXISTS notifications (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    type       TEXT NOT NULL,
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    data       TEXT NOT NULL DEFAULT '{}',
    source_id  TEXT,
    priority   TEXT NOT NULL DEFAULT 'normal',
    read       INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);

-- Audit log of dependency mutations
CREATE TABLE IF NOT EXISTS audit_log (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    dependency_id TEXT NOT NULL,
    action        TEXT NOT NULL,
    field         TEXT,
    old_value     TEXT,
    new_value     TEXT,
    changed_at    TEXT NOT NULL,
    changed_by    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_dependency_id ON audit_log(dependency_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_changed_at ON audit_log(changed_at);
`
