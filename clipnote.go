// Package clipnote clips web pages into notes. It extracts the main
// readable content of a page, optionally rewrites it with an AI
// chat-completion API, and publishes the result to the Mowen note service.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package clipnote
