// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements every store interface through a single database:
//
//   - CredentialStore: Google token pair per owner (google_tokens)
//   - UserStore: login identities (users)
//   - ClientStore: owner-scoped clients (clients)
//   - TemplateStore: owner-scoped email templates (email_templates)
//   - SchedulerStore: background task state (scheduled_tasks, task_results)
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.clientdesk/data/clientdesk.db
//
// # Concurrency
//
// SQLite runs in WAL mode with a busy timeout. Conditional credential updates
// run inside a transaction so that concurrent refreshes cannot overwrite
// each other.
package sqlite
