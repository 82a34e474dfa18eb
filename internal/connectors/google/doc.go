// Package google provides shared infrastructure for the Gmail mail source:
// a refreshing OAuth2 token source built from stored credentials, the
// Gmail service factory, API error mapping onto domain errors, and a
// rate limiter that respects the per-user quota.
//
//	ts := google.NewTokenSource(ctx, google.Credentials{...})
//	svc, err := google.NewGmailService(ctx, ts)
//
// Only the gmail.readonly scope is requested.
package google
