package store

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	timezone TEXT NOT NULL DEFAULT 'Europe/London',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	name TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	model TEXT,
	temperature REAL NOT NULL DEFAULT 0.7,
	max_tokens INTEGER NOT NULL DEFAULT 1024,
	allowed_tools TEXT, -- JSON array of tool names; NULL = all tools
	enabled INTEGER NOT NULL DEFAULT 1,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id)
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	user_id TEXT,
	status TEXT NOT NULL DEFAULT 'active', -- active, archived, deleted
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id),
	FOREIGN KEY(agent_id) REFERENCES agents(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL, -- user, assistant, system; never tool
	content TEXT NOT NULL,
	tool_calls TEXT,   -- JSON
	tool_results TEXT, -- JSON
	model TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	cost_usd REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(conversation_id) REFERENCES conversations(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
	ON messages(conversation_id, created_at);

CREATE TABLE IF NOT EXISTS tools (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	category TEXT,
	input_schema TEXT,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scheduled_tasks (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	conversation_id TEXT,
	title TEXT NOT NULL,
	payload TEXT, -- JSON
	due_at DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending', -- pending, queued, completed, failed
	last_error TEXT,
	queued_at DATETIME,
	completed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id),
	FOREIGN KEY(agent_id) REFERENCES agents(id)
);

CREATE INDEX IF NOT EXISTS idx_scheduled_tasks_due
	ON scheduled_tasks(status, due_at);

CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	status TEXT NOT NULL DEFAULT 'lead', -- lead, active, inactive
	source TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_clients_org ON clients(organization_id);

CREATE TABLE IF NOT EXISTS class_sessions (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	name TEXT NOT NULL,
	instructor TEXT,
	starts_at DATETIME NOT NULL,
	duration_minutes INTEGER NOT NULL DEFAULT 60,
	capacity INTEGER NOT NULL DEFAULT 20,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_class_sessions_org_starts
	ON class_sessions(organization_id, starts_at);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	client_id TEXT NOT NULL,
	class_session_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'booked', -- booked, waitlist, cancelled, attended
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id),
	FOREIGN KEY(client_id) REFERENCES clients(id),
	FOREIGN KEY(class_session_id) REFERENCES class_sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_bookings_session ON bookings(class_session_id, status);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	client_id TEXT,
	amount_cents INTEGER NOT NULL,
	currency TEXT NOT NULL DEFAULT 'GBP',
	status TEXT NOT NULL DEFAULT 'succeeded', -- succeeded, refunded, failed
	paid_at DATETIME NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_payments_org_paid ON payments(organization_id, paid_at);

CREATE TABLE IF NOT EXISTS knowledge_documents (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(organization_id) REFERENCES organizations(id)
);
`
