// Package buildservice talks to an Open Build Service instance.
//
// Client exposes the repository operations the maintenance commands need and
// delegates the actual requests to one of two transports: direct HTTPS calls
// against the REST API or the osc command-line client.
package buildservice
