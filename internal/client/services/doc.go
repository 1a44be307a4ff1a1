// Package services contains application services for the skincare client.
//
// Bridge reconciles the provider identity with the backend user record:
// credential exchange, profile lookup and name repair. Registry owns the
// visible list of the user's sessions and creates and deletes them.
//
// Both talk to the backend through client.Client and honour context
// cancellation on every call.
package services
