// Package services implements the driving ports: login, token refresh,
// mail merge, calendar reads, client and template management and the
// background scheduler.
//
// Services only see driven port interfaces. Google, storage and clocks
// are injected, so every service can be tested with in-memory fakes.
package services
