// Package lrohttp provides a REST status-check client for
// longrunning-style operation APIs.
//
// It is the concrete collaborator behind the opwatch poller's abstract
// status-check contract: [Client.PollFunc] adapts the client into an
// opwatch.PollFunc. The wire shape is the standard longrunning JSON
// operation resource:
//
//	{"name": "...", "done": true, "metadata": {...}, "response": {...}}
//	{"name": "...", "done": true, "error": {"code": 9, "message": "..."}}
//
// served under GET <base>/<name>, with POST <base>/<name>:cancel and
// DELETE <base>/<name> for explicit cancel and delete.
//
// The main components are:
//
//   - [Client]: pooled HTTP client with per-request timeouts and size limits
//   - [APIError]: typed non-2xx responses, carrying the server status body
//   - [ValidateName]: syntactic check for operation resource names
package lrohttp
