// Package git reads the git coordinates an API specification corresponds to
// and turns them into GitStateSet events.
//
// Repositories are opened with go-git; no git binary is required.
package git
