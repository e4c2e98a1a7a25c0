// Package application provides application initialization and dependency
// wiring. It encapsulates the creation of the provider registry, resolver,
// engine client, handlers, router, and HTTP server instances, keeping the
// main package focused on CLI parsing and orchestration.
package application
