// Package models defines the core domain models for clinicbook.
//
// # Models
//
//   - Client: a person receiving billable sessions, with a cached Ledger
//   - Appointment: a scheduled or historical session tied to one client
//   - Payment: money received from a client, immutable once recorded
//   - Ledger: the derived financial and session-progress figures of a client
//
// # Design Principles
//
//  1. **Derived data is a cache**: Client.Ledger is never authoritative. It is
//     overwritten by the calculator after every change to the client's
//     appointments or payments, and once after loading from storage.
//  2. **References by ID**: appointments and payments point back to their client
//     through ClientID only. Deleting a client does not cascade.
//  3. **Denormalized display names**: Appointment.ClientName is captured when the
//     appointment is scheduled and is not kept in sync with later renames.
//  4. **Persisted shape**: each collection is stored as one JSON array, field
//     names in camelCase.
package models
