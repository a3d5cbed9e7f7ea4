// Package chat holds the in-session Q&A transcript over a completed audit.
//
// The channel is strictly gated: nothing can be sent until the audit reaches
// its completed state. Each send appends the user's message and an assistant
// placeholder, then resolves the placeholder with the service's answer or a
// fixed apology when the request fails. The transcript is append-only and is
// discarded with the session.
package chat
