// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Stores
//
// Every store method that touches user data takes the owner id. There is
// no way to read or write another owner's rows through these interfaces.
//
//   - CredentialStore: Google token pair per owner
//   - ClientStore: owner-scoped clients
//   - TemplateStore: owner-scoped email templates
//   - UserStore: login identities
//   - SchedulerStore: background task state
//
// # Provider Boundary
//
//   - IdentityProvider: Google OAuth code exchange, refresh and userinfo
//   - MessageComposer: RFC 5322 envelope encoding
//   - MailSender: Gmail message delivery
//   - EventLister: Google Calendar event listing
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
