/*
Package x contains the extensions a petal application is built from.

Extensions implement common functionality (Handler, Decorator, etc.) and are
combined together in cmd/petald to construct the application. This package
holds the helpers shared between them, mostly around authentication.
*/
package x
