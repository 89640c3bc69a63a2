// Package gateway is the request pipeline every call to the prediction
// backend goes through.
//
// The outgoing stage attaches the stored credential as a bearer token. The
// incoming stage watches for 401 responses to credentialed requests: it
// clears the credential slot and emits an Invalidation before the response
// is handed back, whichever endpoint the request was for. The pipeline never
// navigates; the application subscribes to Events and decides what to do.
package gateway
