// Package api defines the request and response messages of the Clubhouse
// Connect services. Messages travel as JSON: amounts are decimal strings and
// calendar dates are "YYYY-MM-DD".
package api
