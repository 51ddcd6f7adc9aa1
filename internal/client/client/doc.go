// Package client contains the transport and local-database bootstrap of the
// trip client.
//
// TripClient is the contract of the remote sync endpoint; HTTPClient
// implements it as a JSON POST of {trip, attachments} with an optional
// bearer token. Remote rejections surface as *SyncError carrying the
// server's detail; transport failures wrap ErrUnavailable.
//
// InitDatabase opens the SQLite file and applies the embedded goose
// migrations.
package client
