// Package models defines the core domain models for Clubhouse.
//
// # Models
//
//   - Member: a person in the club registry, addressed by nickname on public pages
//   - Account: an entry in the chart of accounts (revenue or expense)
//   - Posting: a dated ledger record against an account
//   - MonthlyFee: a member's dues for one reference month, optionally linked to the posting that paid it
//   - Game: a scheduled event members can RSVP to
//   - Confirmation: a member's attendance acknowledgment for a game
//   - User: a login identity carrying the admin flag and nickname
//
// # Design Principles
//
// 1. **Tagged values**: groups and statuses are typed string constants, never free-form strings
// 2. **IDs over pointers**: relationships are expressed with ID strings
// 3. **Calendar dates**: ledger and game dates carry no time of day and are normalised to UTC midnight
// 4. **Exact money**: amounts use decimal.Decimal, never float64
package models
